package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nsilverman/compete/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateAndGetContestAPI(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/v1/contests", `{"name":"Spring Cup","description":"Round one"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var created models.Contest
	resp := decodeResponse(t, rec, &created)
	require.True(t, resp.Success)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, models.StatusOpen, created.Status)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contests/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Contest
	decodeResponse(t, rec, &got)
	assert.Equal(t, "Spring Cup", got.Name)
	assert.Equal(t, "Round one", got.Description)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contests/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp = decodeResponse(t, rec, nil)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestCreateContestValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]string{
		"malformed":       `{`,
		"missing name":    `{"description":"x"}`,
		"unknown status":  `{"name":"A","status":"paused"}`,
		"reversed window": `{"name":"A","starts_at":"2026-05-02T00:00:00Z","ends_at":"2026-05-01T00:00:00Z"}`,
	}
	for name, body := range cases {
		rec := env.do(t, jsonRequest(http.MethodPost, "/api/v1/contests", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		resp := decodeResponse(t, rec, nil)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code, name)
	}

	contests, err := env.db.ListContests("")
	require.NoError(t, err)
	assert.Empty(t, contests)
}

func TestListContestsAPI(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contests", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	future := time.Now().Add(time.Hour)
	env.createContest(t, &models.Contest{Name: "Spring Cup"})
	env.createContest(t, &models.Contest{Name: "Later Cup", StartsAt: &future})

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contests?status=scheduled", nil))
	var contests []models.Contest
	decodeResponse(t, rec, &contests)
	require.Len(t, contests, 1)
	assert.Equal(t, "Later Cup", contests[0].Name)
}

func TestUpdateContestAPI(t *testing.T) {
	env := newTestEnv(t)
	env.createContest(t, &models.Contest{Name: "Spring Cup"})

	rec := env.do(t, jsonRequest(http.MethodPut, "/api/v1/contests/1", `{"name":"Spring Cup 2026"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.db.GetContest(1)
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup 2026", got.Name)
	assert.Equal(t, models.StatusOpen, got.Status)

	rec = env.do(t, jsonRequest(http.MethodPut, "/api/v1/contests/99", `{"name":"x"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, jsonRequest(http.MethodPut, "/api/v1/contests/1", `{"name":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenAndCloseContestAPI(t *testing.T) {
	env := newTestEnv(t)
	future := time.Now().Add(24 * time.Hour)
	env.createContest(t, &models.Contest{Name: "Later Cup", StartsAt: &future})

	rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/contests/1/open", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := env.db.GetContest(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, models.StatusOpen, got.StatusAt(time.Now()))

	rec = env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/contests/1/close", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got, err = env.db.GetContest(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	rec = env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/contests/42/close", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteContestAndEntriesAPI(t *testing.T) {
	env := newTestEnv(t)
	contest := env.createContest(t, &models.Contest{Name: "Spring Cup"})
	_, _, err := env.db.CreateEntry(contest.ID, "alice")
	require.NoError(t, err)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contests/1/entries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.Entry
	decodeResponse(t, rec, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Contestant)

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/contests/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/contests/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/contests/1/entries", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
