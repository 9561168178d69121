package main

import (
	"context"
	"time"

	"github.com/trezcool/agora/core"
	"github.com/trezcool/agora/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Username:  uname,
			Email:     email,
			Role:      user.RoleParticipant,
			CreatedAt: now,
		}
	}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.SetActive(true)
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
