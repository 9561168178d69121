package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agora/core"
	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/category"
	"github.com/trezcool/agora/core/user"
	emailsvc "github.com/trezcool/agora/services/email"
	dummydb "github.com/trezcool/agora/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixedAQService struct {
	res core.AirQualityResult
}

func (svc fixedAQService) CityFeed(context.Context, string) core.AirQualityResult {
	return svc.res
}

type testEnv struct {
	app     Server
	usrRepo user.Repository
	catRepo category.Repository
	actRepo activity.Repository
}

func setup(t *testing.T) testEnv {
	t.Helper()

	// error payloads take their production shape
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db := dummydb.Open()
	env := testEnv{
		usrRepo: dummydb.NewUserRepository(db),
		catRepo: dummydb.NewCategoryRepository(db),
		actRepo: dummydb.NewActivityRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(env.usrRepo, mailSvc)
	catSvc := category.NewService(env.catRepo)
	actSvc := activity.NewService(
		env.actRepo, env.usrRepo, env.catRepo,
		fixedAQService{res: core.AirQualityResult{Status: core.AirQualityOK, Index: 42}},
	)

	env.app = NewServer(
		&Options{
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			ActivitySvc:    actSvc,
			CategorySvc:    catSvc,
			Logger:         nopLogger{},
		},
	)
	return env
}

func (env testEnv) createUser(t *testing.T, uname, pwd, role string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		FirstName: "Test",
		LastName:  "User",
		Username:  uname,
		Email:     uname + "@test.cd",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := env.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (env testEnv) createCategory(t *testing.T, name string) category.Category {
	t.Helper()

	now := time.Now().UTC()
	cat, err := env.catRepo.CreateCategory(context.Background(), category.Category{Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateCategory(): %v", err)
	}
	return cat
}

func (env testEnv) createActivity(t *testing.T, title, proposerID, catID string, startIn time.Duration) activity.Activity {
	t.Helper()

	now := time.Now().UTC()
	start := now.Add(startIn)
	act, err := env.actRepo.CreateActivity(context.Background(), activity.Activity{
		Title:       title,
		Description: "something to do together",
		City:        "Kinshasa",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		ProposerID:  proposerID,
		CategoryID:  catID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateActivity(): %v", err)
	}
	return act
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
