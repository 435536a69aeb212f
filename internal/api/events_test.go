package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nsilverman/compete/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestEventsArePushed(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		env.server.wsMu.Lock()
		defer env.server.wsMu.Unlock()
		return len(env.server.wsClients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(ts.URL+"/api/v1/contests", "application/json", strings.NewReader(`{"name":"Spring Cup"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type string         `json:"type"`
		Data models.Contest `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventContestCreated, event.Type)
	assert.Equal(t, "Spring Cup", event.Data.Name)
}

func TestSchedulerEventsReachServer(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		env.server.wsMu.Lock()
		defer env.server.wsMu.Unlock()
		return len(env.server.wsClients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	end := time.Now().Add(50 * time.Millisecond)
	contest := env.createContest(t, &models.Contest{Name: "Flash Cup", EndsAt: &end})
	require.Equal(t, models.StatusOpen, contest.Status)

	time.Sleep(100 * time.Millisecond)
	changed, err := env.server.scheduler.Sweep()
	require.NoError(t, err)
	require.Len(t, changed, 1)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.ContestEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventContestClosed, event.Type)
}

func TestStalledClientDoesNotBlockServer(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var client *wsClient
	require.Eventually(t, func() bool {
		env.server.wsMu.Lock()
		defer env.server.wsMu.Unlock()
		for _, c := range env.server.wsClients {
			client = c
		}
		return client != nil
	}, 2*time.Second, 10*time.Millisecond)

	// Hold the client's write lock as a write in progress would
	client.mu.Lock()
	done := make(chan struct{})
	go func() {
		env.server.BroadcastEvent(models.ContestEvent{Type: models.EventContestUpdated})
		close(done)
	}()

	// The client set stays available while the write is stuck
	require.Eventually(t, func() bool {
		if !env.server.wsMu.TryLock() {
			return false
		}
		env.server.wsMu.Unlock()
		return true
	}, 2*time.Second, 10*time.Millisecond)
	select {
	case <-done:
		t.Fatal("broadcast finished while the client write was blocked")
	default:
	}

	client.mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast did not finish")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.ContestEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventContestUpdated, event.Type)
}
