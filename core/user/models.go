package user

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/agora/core"
)

// Roles
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
)

var (
	AllRoles = []string{RoleAdmin, RoleParticipant, RoleOrganizer}

	Roles = []Role{
		{Name: "Participant", Value: RoleParticipant},
		{Name: "Organizer", Value: RoleOrganizer},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role,omitempty"` // optional; one of AllRoles
	Avatar       string    `json:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	IsActive     *bool     `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

// IsAnonymous reports whether u is the anonymous (unauthenticated) actor.
// The zero User is the explicit anonymous marker passed to workflow operations.
func (u *User) IsAnonymous() bool {
	return u.ID == ""
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	return core.CleanString(strings.TrimSpace(u.FirstName + " " + u.LastName))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to sign up a new User.
type NewUser struct {
	FirstName       string `json:"first_name" form:"first_name" validate:"required"`
	LastName        string `json:"last_name" form:"last_name" validate:"required"`
	Username        string `json:"username" form:"username" validate:"required,min=3,alphanum_"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
	Bio             string `json:"bio" form:"bio" validate:"omitempty,max=500"`
	Role            string `json:"role" form:"role" validate:"omitempty,role"`

	// set by the API layer after a successful avatar upload; not user-provided
	Avatar string `json:"-" form:"-"`
}

func (nu *NewUser) Validate(ctx context.Context, svc Service) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Bio = core.CleanString(nu.Bio)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName       string `json:"first_name" form:"first_name"`
	LastName        string `json:"last_name" form:"last_name"`
	Username        string `json:"username" form:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string `json:"email" form:"email" validate:"omitempty,email"`
	Bio             string `json:"bio" form:"bio" validate:"omitempty,max=500"`
	Password        string `json:"password" form:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required_with=Password,eqfield=Password"`

	Avatar string `json:"-" form:"-"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc Service) error {
	if name := core.CleanString(uu.FirstName); name != "" {
		uu.FirstName = name
	} else {
		uu.FirstName = origUsr.FirstName
	}
	if name := core.CleanString(uu.LastName); name != "" {
		uu.LastName = name
	} else {
		uu.LastName = origUsr.LastName
	}
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	uu.Bio = core.CleanString(uu.Bio)

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

// GetFilter selects a single User by one of its unique attributes.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string // [username, email]; either may be empty
}
