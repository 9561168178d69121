package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agora/core/user"
)

type dbUser struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	Role         null.String `db:"role"`
	Avatar       null.String `db:"avatar"`
	Bio          null.String `db:"bio"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) pack(usr user.User) dbUser {
	u := dbUser{
		ID:           usr.ID,
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Username:     usr.Username,
		Email:        usr.Email,
		Role:         null.NewString(usr.Role, usr.Role != ""),
		Avatar:       null.NewString(usr.Avatar, usr.Avatar != ""),
		Bio:          null.NewString(usr.Bio, usr.Bio != ""),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
	if usr.IsActive != nil {
		u.IsActive = *usr.IsActive
	}
	return u
}

func (repo userRepository) unpack(u dbUser) user.User {
	usr := user.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role.String,
		Avatar:       u.Avatar.String,
		Bio:          u.Bio.String,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin.Time,
	}
	usr.SetActive(u.IsActive)
	return usr
}

func (repo userRepository) unpackSlice(rows []dbUser) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, repo.unpack(u))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) exists(ctx context.Context, column, value string, exclIDs []string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE ` + column + ` = ?)`
	args := []interface{}{value}
	if len(exclIDs) > 0 {
		var err error
		q = `SELECT EXISTS (SELECT 1 FROM "user" WHERE ` + column + ` = ? AND id NOT IN (?))`
		q, args, err = sqlx.In(q, value, exclIDs)
		if err != nil {
			return false, errors.Wrap(err, "expanding query")
		}
	}

	var exists bool
	err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...)
	return exists, err
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		exclIDs = append(exclIDs, u.ID)
	}

	exists, err := repo.exists(ctx, "username", username, exclIDs)
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}

	exists, err = repo.exists(ctx, "email", email, exclIDs)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	u := repo.pack(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, first_name, last_name, username, email, role, avatar, bio,
		                    is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:id, :first_name, :last_name, :username, :email, :role, :avatar, :bio,
		        :is_active, :password_hash, :created_at, :updated_at, :last_login)`, u)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unpack(u), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []dbUser
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unpackSlice(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var u dbUser
	var err error

	switch {
	case filter.ID != "":
		if _, err = uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE id = $1`, filter.ID)
	case filter.Username != "":
		err = repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE username = $1`, filter.Username)
	case filter.Email != "":
		err = repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE email = $1`, filter.Email)
	case len(filter.UsernameOrEmail) > 0:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		err = repo.db.GetContext(ctx, &u, `SELECT * FROM "user" WHERE username = $1 OR email = $2`, uname, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unpack(u), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	u := repo.pack(usr)
	type updateParams struct {
		dbUser
		SetIsActive null.Bool `db:"set_is_active"`
	}
	params := updateParams{dbUser: u}
	if isActive != nil {
		params.SetIsActive = null.BoolFromPtr(isActive)
	} else {
		params.SetIsActive = null.BoolFromPtr(usr.IsActive)
	}

	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE "user"
		SET first_name    = :first_name,
		    last_name     = :last_name,
		    username      = :username,
		    email         = :email,
		    role          = :role,
		    avatar        = :avatar,
		    bio           = :bio,
		    password_hash = :password_hash,
		    is_active     = COALESCE(:set_is_active, is_active),
		    updated_at    = :updated_at,
		    last_login    = COALESCE(:last_login, last_login)
		WHERE id = :id`, params)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr, nil)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "expanding query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
