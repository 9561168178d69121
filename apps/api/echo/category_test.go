package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agora/core/category"
	"github.com/trezcool/agora/core/user"
)

func Test_categoryApi(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "alice", "v3ryS3cretLol", user.RoleParticipant)
	admin := env.createUser(t, "boss", "v3ryS3cretLol", user.RoleAdmin)
	token := getToken(t, usr)
	adminToken := getToken(t, admin)

	sport := env.createCategory(t, "sport")

	t.Run("public listing", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/categories")
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var cats []category.Category
		if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.Len(t, cats, 1)
		assert.Equal(t, sport.Name, cats[0].Name)
	})

	createTests := []httpTest{
		{
			name: "create: anonymous", body: []byte(`{"name": "culture"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "create: non-admin", body: []byte(`{"name": "culture"}`), token: token,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "create: admin", body: []byte(`{"name": "culture"}`), token: adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name: "create: taken name", body: []byte(`{"name": "sport"}`), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": category.ErrNameExists.Error()}),
		},
		{
			name: "create: name too short", body: []byte(`{"name": "c"}`), token: adminToken,
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range createTests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/categories", tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	deleteTests := []httpTest{
		{
			name: "delete: non-admin", path: "/v1/categories/" + sport.ID, token: token,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "delete: admin", path: "/v1/categories/" + sport.ID, token: adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "delete: unknown category", path: "/v1/categories/lol", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range deleteTests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
