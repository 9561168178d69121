package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/user"
)

func Test_activityApi_query(t *testing.T) {
	env := setup(t)

	alice := env.createUser(t, "alice", "v3ryS3cretLol", user.RoleParticipant)
	bob := env.createUser(t, "bob", "v3ryS3cretLol", user.RoleParticipant)
	sport := env.createCategory(t, "sport")

	env.createActivity(t, "old run", alice.ID, sport.ID, -24*time.Hour)
	env.createActivity(t, "picnic", bob.ID, "", 24*time.Hour)
	run := env.createActivity(t, "morning run", alice.ID, sport.ID, 48*time.Hour)
	env.createActivity(t, "chess night", alice.ID, "", 72*time.Hour)
	env.createActivity(t, "karaoke", bob.ID, "", 96*time.Hour)

	token := getToken(t, alice)

	if err := env.actRepo.AddAttendee(context.Background(), run.ID, bob.ID); err != nil {
		t.Fatalf("AddAttendee(): %v", err)
	}

	tests := []struct {
		name       string
		path       string
		token      string
		wantTitles []string
		wantPage   int
		wantCount  int
		wantTotal  int
	}{
		{
			name: "first page, soonest first", path: "/v1/activities",
			wantTitles: []string{"picnic", "morning run", "chess night"}, wantPage: 1, wantCount: 2, wantTotal: 4,
		},
		{
			name: "second page", path: "/v1/activities?page=2",
			wantTitles: []string{"karaoke"}, wantPage: 2, wantCount: 2, wantTotal: 4,
		},
		{
			name: "page overflow clamps to last", path: "/v1/activities?page=99",
			wantTitles: []string{"karaoke"}, wantPage: 2, wantCount: 2, wantTotal: 4,
		},
		{
			name: "malformed page degrades to first", path: "/v1/activities?page=lol",
			wantTitles: []string{"picnic", "morning run", "chess night"}, wantPage: 1, wantCount: 2, wantTotal: 4,
		},
		{
			name: "category filter", path: "/v1/activities?category=" + sport.ID,
			wantTitles: []string{"morning run"}, wantPage: 1, wantCount: 1, wantTotal: 1,
		},
		{
			name: "mine view", path: "/v1/activities?view=mine", token: token,
			wantTitles: []string{"morning run", "chess night"}, wantPage: 1, wantCount: 1, wantTotal: 2,
		},
		{
			name: "mine view falls back to all when anonymous", path: "/v1/activities?view=mine",
			wantTitles: []string{"picnic", "morning run", "chess night"}, wantPage: 1, wantCount: 2, wantTotal: 4,
		},
		{
			name: "attending view", path: "/v1/activities?view=attending", token: getToken(t, bob),
			wantTitles: []string{"morning run"}, wantPage: 1, wantCount: 1, wantTotal: 1,
		},
		{
			name: "unknown view falls back to all", path: "/v1/activities?view=lol",
			wantTitles: []string{"picnic", "morning run", "chess night"}, wantPage: 1, wantCount: 2, wantTotal: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var page activity.Page
			if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}

			gotTitles := make([]string, 0, len(page.Items))
			for _, act := range page.Items {
				gotTitles = append(gotTitles, act.Title)
			}
			assert.Equal(t, tt.wantTitles, gotTitles)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantCount, page.PageCount)
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}
}

func Test_activityApi_create(t *testing.T) {
	env := setup(t)

	alice := env.createUser(t, "alice", "v3ryS3cretLol", user.RoleParticipant)
	sport := env.createCategory(t, "sport")
	token := getToken(t, alice)

	start := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(26 * time.Hour).Format(time.RFC3339)

	payload := func(title, cat string) []byte {
		return []byte(fmt.Sprintf(`{
			"title": %q,
			"description": "a good time with friends",
			"city": "Kinshasa",
			"category": %q,
			"start_time": %q,
			"end_time": %q
		}`, title, cat, start, end))
	}

	tests := []httpTest{
		{
			name: "anonymous is rejected", body: payload("morning run", sport.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "create ok", body: payload("morning run", sport.ID), token: token,
			wantCode: http.StatusCreated,
		},
		{
			name: "create uncategorized", body: payload("chess night", "none"), token: token,
			wantCode: http.StatusCreated,
		},
		{
			name: "title too short", body: payload("run", sport.ID), token: token,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown category", body: payload("morning run", "lol"), token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"category": "invalid category"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/activities", tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code == http.StatusCreated {
				var act activity.Activity
				if err := json.Unmarshal(rec.Body.Bytes(), &act); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				assert.NotEmpty(t, act.ID)
				assert.Equal(t, alice.ID, act.ProposerID)
			}
		})
	}
}

func Test_activityApi_retrieve(t *testing.T) {
	env := setup(t)

	alice := env.createUser(t, "alice", "v3ryS3cretLol", user.RoleParticipant)
	bob := env.createUser(t, "bob", "v3ryS3cretLol", user.RoleParticipant)
	sport := env.createCategory(t, "sport")
	run := env.createActivity(t, "morning run", alice.ID, sport.ID, 24*time.Hour)

	if err := env.actRepo.AddAttendee(context.Background(), run.ID, bob.ID); err != nil {
		t.Fatalf("AddAttendee(): %v", err)
	}

	t.Run("anonymous viewer", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/activities/"+run.ID)
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var detail activity.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.Equal(t, alice.ID, detail.Proposer.ID)
		assert.Equal(t, sport.Name, detail.Category.Name)
		assert.Len(t, detail.Attendees, 1)
		assert.False(t, detail.IsAttending)
		assert.Equal(t, "42", detail.AirQuality)
	})

	t.Run("attending viewer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/activities/"+run.ID, getToken(t, bob))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var detail activity.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		assert.True(t, detail.IsAttending)
	})

	t.Run("unknown activity", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		req, rec := newRequest(http.MethodGet, "/v1/activities/lol")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_activityApi_register(t *testing.T) {
	env := setup(t)

	alice := env.createUser(t, "alice", "v3ryS3cretLol", user.RoleParticipant)
	bob := env.createUser(t, "bob", "v3ryS3cretLol", user.RoleParticipant)
	run := env.createActivity(t, "morning run", alice.ID, "", 24*time.Hour)
	token := getToken(t, bob)

	enroll := []byte(`{"action": "inscrit"}`)
	withdraw := []byte(`{"action": "desinscrit"}`)

	steps := []struct {
		name          string
		body          []byte
		token         string
		path          string
		wantCode      int
		wantData      []byte
		wantAttending bool
	}{
		{name: "anonymous is rejected", body: enroll, path: "/v1/activities/" + run.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "enroll", body: enroll, token: token, path: "/v1/activities/" + run.ID, wantCode: http.StatusOK, wantAttending: true},
		{name: "enroll again is a no-op", body: enroll, token: token, path: "/v1/activities/" + run.ID, wantCode: http.StatusOK, wantAttending: true},
		{name: "withdraw", body: withdraw, token: token, path: "/v1/activities/" + run.ID, wantCode: http.StatusOK, wantAttending: false},
		{name: "withdraw again is a no-op", body: withdraw, token: token, path: "/v1/activities/" + run.ID, wantCode: http.StatusOK, wantAttending: false},
		{name: "unknown action", body: []byte(`{"action": "join"}`), token: token, path: "/v1/activities/" + run.ID, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"action": "action must be one of: inscrit, desinscrit"})},
		{name: "missing action", body: []byte(`{}`), token: token, path: "/v1/activities/" + run.ID, wantCode: http.StatusBadRequest},
		{name: "unknown activity", body: enroll, token: token, path: "/v1/activities/lol", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"})},
	}
	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			httpTt := httpTest{wantCode: tt.wantCode, wantData: tt.wantData}
			checkCodeAndData(t, httpTt, rec)

			if rec.Code == http.StatusOK {
				var detail activity.Detail
				if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				assert.Equal(t, tt.wantAttending, detail.IsAttending)
			}
		})
	}
}
