package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/stats"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	t       *testing.T
	handler http.Handler
	clock   *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := db.Open(
		filepath.Join(t.TempDir(), "shed.db"),
		db.WithClock(clock.Now),
		db.WithLocation(time.UTC),
		db.WithLogger(logger),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &testEnv{
		t:       t,
		handler: NewServer(store, []string{"root"}, logger).Handler(),
		clock:   clock,
	}
}

// do sends a request as user and returns the recorded response.
func (e *testEnv) do(method, path, user string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-Auth-User", user)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/sessions/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[errorResponse](t, rec).Code)

	for _, header := range []string{"X-Auth-User", "X-Forwarded-User", "Remote-User"} {
		req := httptest.NewRequest(http.MethodGet, "/sessions/", nil)
		req.Header.Set(header, "alice")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, header)
	}
}

func TestSessionCRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/sessions/tags/", "alice", map[string]string{"name": "scales", "color": "#abc"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decode[map[string]any](t, rec)
	tagID := uint(tag["id"].(float64))
	assert.Equal(t, "#AABBCC", tag["color"])

	rec = env.do(http.MethodPost, "/sessions/", "alice", map[string]any{
		"instrument":   "Guitar",
		"description":  "scales in C",
		"session_date": "2024-03-12",
		"duration":     "1h30m",
		"tag_ids":      []uint{tagID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[sessionResponse](t, rec)
	assert.Equal(t, uint(1), created.DisplayID)
	assert.Equal(t, "alice", created.User)
	assert.Equal(t, "guitar", created.Instrument)
	assert.Equal(t, int64(5400), created.DurationSeconds)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "scales", created.Tags[0].Name)

	path := fmt.Sprintf("/sessions/%d/", created.SessionID)

	rec = env.do(http.MethodGet, path, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scales in C", decode[sessionResponse](t, rec).Description)

	rec = env.do(http.MethodGet, path, "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPatch, path, "alice", map[string]any{"duration_seconds": 600, "tag_ids": []uint{}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[sessionResponse](t, rec)
	assert.Equal(t, int64(600), updated.DurationSeconds)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, "guitar", updated.Instrument)

	rec = env.do(http.MethodPatch, path, "alice", map[string]any{"duration_seconds": int64(18446744074)})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPatch, path, "alice", map[string]any{"duration_seconds": 24 * 60 * 60})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(24*60*60), decode[sessionResponse](t, rec).DurationSeconds)

	rec = env.do(http.MethodGet, "/sessions/?instrument=guitar", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]sessionResponse](t, rec), 1)

	rec = env.do(http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, path, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSeesEveryone(t *testing.T) {
	env := newTestEnv(t)

	for _, user := range []string{"alice", "bob"} {
		rec := env.do(http.MethodPost, "/sessions/", user, map[string]any{"instrument": "piano", "duration_seconds": 60})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodGet, "/sessions/", "root", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]sessionResponse](t, rec), 2)

	rec = env.do(http.MethodGet, "/sessions/?user=bob", "root", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[[]sessionResponse](t, rec)
	require.Len(t, sessions, 1)
	assert.Equal(t, "bob", sessions[0].User)

	rec = env.do(http.MethodGet, "/sessions/", "alice", nil)
	assert.Len(t, decode[[]sessionResponse](t, rec), 1)
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{name: "missing instrument", method: http.MethodPost, path: "/sessions/", body: map[string]any{}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "malformed body", method: http.MethodPost, path: "/sessions/", body: "not an object", status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "bad duration", method: http.MethodPost, path: "/sessions/", body: map[string]any{"instrument": "piano", "duration": "soon"}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "duration seconds overflow", method: http.MethodPost, path: "/sessions/", body: map[string]any{"instrument": "guitar", "duration_seconds": int64(18446744074)}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "duration seconds over a day", method: http.MethodPost, path: "/sessions/", body: map[string]any{"instrument": "guitar", "duration_seconds": 90000}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "negative duration seconds", method: http.MethodPost, path: "/sessions/", body: map[string]any{"instrument": "guitar", "duration_seconds": -60}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "numeric duration over a day", method: http.MethodPost, path: "/sessions/", body: map[string]any{"instrument": "guitar", "duration": 1e12}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "duration string over a day", method: http.MethodPost, path: "/sessions/", body: map[string]any{"instrument": "guitar", "duration": "25h"}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "unknown session", method: http.MethodGet, path: "/sessions/42/", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown tag", method: http.MethodDelete, path: "/sessions/tags/42/", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "stop unknown timer", method: http.MethodPost, path: "/sessions/timer/42/stop/", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "negative days", method: http.MethodGet, path: "/sessions/calendar/?days=-1", status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "non-numeric days", method: http.MethodGet, path: "/sessions/by-instrument/?days=week", status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "bad tag filter", method: http.MethodGet, path: "/sessions/?tag=x", status: http.StatusBadRequest, code: "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, "alice", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[errorResponse](t, rec).Code)
		})
	}
}

func TestTimerFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/sessions/timer/active/", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active":false}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/sessions/timer/start/", "alice", map[string]any{"instrument": "trumpet"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	started := decode[sessionResponse](t, rec)
	assert.True(t, started.InProgress)

	rec = env.do(http.MethodPost, "/sessions/timer/start/", "alice", map[string]any{"instrument": "trumpet"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decode[errorResponse](t, rec).Code)

	base := fmt.Sprintf("/sessions/timer/%d", started.SessionID)

	env.clock.Advance(20 * time.Minute)
	rec = env.do(http.MethodPost, base+"/pause/", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[sessionResponse](t, rec).IsPaused)

	rec = env.do(http.MethodPost, base+"/pause/", "alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", decode[errorResponse](t, rec).Code)

	env.clock.Advance(5 * time.Minute)
	rec = env.do(http.MethodGet, "/sessions/timer/active/", "alice", nil)
	active := decode[activeTimerResponse](t, rec)
	require.True(t, active.Active)
	assert.Equal(t, int64(20*60), active.Session.ElapsedSeconds)

	rec = env.do(http.MethodPost, base+"/resume/", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5*60), decode[sessionResponse](t, rec).PausedDurationSeconds)

	env.clock.Advance(10 * time.Minute)
	rec = env.do(http.MethodPost, base+"/stop/", "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, base+"/stop/", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stopped := decode[sessionResponse](t, rec)
	assert.False(t, stopped.InProgress)
	assert.Equal(t, int64(30*60), stopped.DurationSeconds)
}

func TestStatsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{
		{"instrument": "guitar", "duration": "2h"},
		{"instrument": "guitar", "duration_seconds": 3600},
		{"instrument": "piano", "duration": 1800, "session_date": "2024-03-12"},
	} {
		rec := env.do(http.MethodPost, "/sessions/", "alice", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodGet, "/sessions/stats/", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[stats.Summary](t, rec)
	assert.InDelta(t, 3.5, summary.TotalHours, 1e-9)
	assert.Equal(t, int64(3), summary.TotalSessions)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, "guitar", summary.FavoriteInstrument)

	rec = env.do(http.MethodGet, "/sessions/calendar/?days=7", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wantDays := []stats.CalendarDay{
		{Date: "2024-03-12", DurationMinutes: 30, SessionCount: 1},
		{Date: "2024-03-13", DurationMinutes: 180, SessionCount: 2},
	}
	if diff := cmp.Diff(wantDays, decode[[]stats.CalendarDay](t, rec)); diff != "" {
		t.Errorf("calendar mismatch (-want +got):\n%s", diff)
	}

	rec = env.do(http.MethodGet, "/sessions/by-instrument/", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[[]stats.InstrumentTotal](t, rec)
	require.Len(t, totals, 2)
	assert.Equal(t, "guitar", totals[0].Instrument)
	assert.InDelta(t, 3.0, totals[0].DurationHours, 1e-9)

	rec = env.do(http.MethodGet, "/sessions/stats/", "bob", nil)
	assert.JSONEq(t,
		`{"total_hours":0,"total_sessions":0,"week_hours":0,"current_streak":0,"favorite_instrument":"None"}`,
		strings.TrimSpace(rec.Body.String()))
}
