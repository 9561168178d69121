package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/agora/apps/api/echo"
	"github.com/trezcool/agora/core"
	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/category"
	"github.com/trezcool/agora/core/user"
	aqsvc "github.com/trezcool/agora/services/airquality"
	emailsvc "github.com/trezcool/agora/services/email"
	logsvc "github.com/trezcool/agora/services/logger"
	"github.com/trezcool/agora/storage/database"
	sqlxrepos "github.com/trezcool/agora/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	catRepo := sqlxrepos.NewCategoryRepository(db)
	actRepo := sqlxrepos.NewActivityRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	catSvc := category.NewService(catRepo)
	actSvc := activity.NewService(actRepo, usrRepo, catRepo, aqsvc.NewWAQIService(logger))

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:        net.JoinHostPort("", core.Conf.Server.Port),
			UserSvc:     usrSvc,
			ActivitySvc: actSvc,
			CategorySvc: catSvc,
			Logger:      logger,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
