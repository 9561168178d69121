package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/agora/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := func(usr user.User) bool {
		for _, ex := range excludedUsers {
			if ex.ID == usr.ID {
				return true
			}
		}
		return false
	}

	for _, usr := range repo.query() {
		if excluded(usr) {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}

	var uname, email string
	switch {
	case filter.Username != "":
		uname = filter.Username
	case filter.Email != "":
		email = filter.Email
	case len(filter.UsernameOrEmail) > 0:
		uname = filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
	default:
		return user.User{}, user.ErrNotFound
	}

	for _, usr := range repo.query() {
		if (uname != "" && usr.Username == uname) || (email != "" && usr.Email == email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	// only save set fields
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		origUsr.SetActive(*isActive)
	} else if usr.IsActive != nil {
		origUsr.IsActive = usr.IsActive
	}
	if !usr.LastLogin.IsZero() {
		origUsr.LastLogin = usr.LastLogin
	}
	origUsr.FirstName = usr.FirstName
	origUsr.LastName = usr.LastName
	origUsr.Username = usr.Username
	origUsr.Email = usr.Email
	origUsr.Role = usr.Role
	origUsr.Avatar = usr.Avatar
	origUsr.Bio = usr.Bio
	origUsr.UpdatedAt = usr.UpdatedAt

	repo.db.users[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr, nil)
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.users[id]; !ok {
			continue
		}
		delete(repo.db.users, id)
		cnt++

		// cascade: proposed activities go down with the proposer
		for actID, act := range repo.db.activities {
			if act.ProposerID == id {
				delete(repo.db.activities, actID)
				delete(repo.db.attendees, actID)
			}
		}
		// cascade: attendance entries
		for _, set := range repo.db.attendees {
			delete(set, id)
		}
	}
	return cnt, nil
}
