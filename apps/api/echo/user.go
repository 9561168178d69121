package echoapi

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agora/core"
	"github.com/trezcool/agora/core/user"
)

const maxAvatarSize = 5 << 20 // 5MB

var (
	avatarExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

	errNoPermsToSetRole = "not enough rights to set this role"
	errBadAvatarType    = "file type must be one of: png, jpg, jpeg"
	errAvatarTooBig     = "file may not exceed 5MB"
)

type userApi struct {
	svc user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/login`
	ug.POST("/register", api.signup)
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.retrieveMe)
	ag.PUT("/me", api.updateMe)
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/roles", api.queryRoles, adminMiddleware())
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	avatar, err := saveAvatar(ctx)
	if err != nil {
		return err
	}
	data.Avatar = avatar

	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}
	// the admin role is granted via the admin CLI only
	if data.Role == user.RoleAdmin {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: errNoPermsToSetRole})
	}
	if data.Role == "" {
		data.Role = user.RoleParticipant
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) retrieveMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	avatar, err := saveAvatar(ctx)
	if err != nil {
		return err
	}
	data.Avatar = avatar

	if err := data.Validate(ctx.Request().Context(), usr, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

// saveAvatar stores an uploaded avatar under the media root and returns
// its media-relative path. Requests without an avatar part are fine.
func saveAvatar(ctx echo.Context) (string, error) {
	file, err := ctx.FormFile("avatar")
	if err != nil {
		return "", nil // not a multipart request or no avatar part
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExts[ext] {
		return "", core.NewValidationError(nil, core.FieldError{Field: "avatar", Error: errBadAvatarType})
	}
	if file.Size > maxAvatarSize {
		return "", core.NewValidationError(nil, core.FieldError{Field: "avatar", Error: errAvatarTooBig})
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening avatar upload")
	}
	defer src.Close()

	dir := filepath.Join(core.Conf.MediaRoot, "avatars")
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating avatars dir")
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating avatar file")
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "saving avatar file")
	}
	return filepath.ToSlash(filepath.Join("avatars", name)), nil
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}
