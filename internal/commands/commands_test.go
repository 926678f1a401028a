package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/stats"
)

// setupEnv points the CLI at a fresh database for user alice.
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SHED_DB_PATH", filepath.Join(t.TempDir(), "shed.db"))
	t.Setenv("SHED_USER", "alice")
	t.Setenv("SHED_ADMINS", "")
	t.Setenv("SHED_TIMEZONE", "UTC")
	t.Setenv("SHED_LOG_LEVEL", "error")
	t.Setenv("SHED_LOG_FILE", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(args, &out)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "shed %v\n%s", args, out)
	return out
}

func listJSON(t *testing.T, args ...string) []jsonSession {
	t.Helper()
	out := mustRun(t, append(args, "--json")...)
	var sessions []jsonSession
	require.NoError(t, json.Unmarshal([]byte(out), &sessions), out)
	return sessions
}

func TestLogAndList(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "log", "scales in C @Guitar #technique,warmup 45m")
	assert.Contains(t, out, "Logged session #1")
	assert.Contains(t, out, "Session #1: guitar")

	mustRun(t, "log", "chorale", "-i", "piano", "-d", "1h30m", "--date", "yesterday", "--goals", "voicing")

	sessions := listJSON(t, "ls")
	require.Len(t, sessions, 2)

	// newest first
	assert.Equal(t, uint(1), sessions[0].ID)
	assert.Equal(t, "guitar", sessions[0].Instrument)
	assert.Equal(t, "scales in C", sessions[0].Description)
	assert.Equal(t, int64(45*60), sessions[0].DurationSeconds)
	assert.ElementsMatch(t, []string{"technique", "warmup"}, sessions[0].Tags)

	assert.Equal(t, "piano", sessions[1].Instrument)
	assert.Equal(t, int64(90*60), sessions[1].DurationSeconds)
	assert.Equal(t, "voicing", sessions[1].Goals)

	filtered := listJSON(t, "ls", "--tag", "#warmup")
	require.Len(t, filtered, 1)
	assert.Equal(t, "guitar", filtered[0].Instrument)

	table := mustRun(t, "ls")
	assert.Contains(t, table, "INSTRUMENT")
	assert.Contains(t, table, "piano")
}

func TestLogValidation(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing instrument", args: []string{"log", "scales 45m"}},
		{name: "missing duration", args: []string{"log", "scales @guitar"}},
		{name: "future date", args: []string{"log", "scales @guitar 45m", "--date", "01/01/2999"}},
		{name: "bad skill", args: []string{"log", "scales @guitar 45m", "--skill", "wizard"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, apperr.CodeValidation), "got %v", err)
		})
	}
}

func TestShowEditRemove(t *testing.T) {
	setupEnv(t)
	mustRun(t, "log", "arpeggios @cello #bowing 20m")

	out := mustRun(t, "show", "#1")
	assert.Contains(t, out, "Session #1: cello")
	assert.Contains(t, out, "#bowing")

	mustRun(t, "edit", "1", "--duration", "1h", "--tags", "", "--description", "etudes")
	sessions := listJSON(t, "ls")
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(3600), sessions[0].DurationSeconds)
	assert.Equal(t, "etudes", sessions[0].Description)
	assert.Empty(t, sessions[0].Tags)

	_, err := run(t, "edit", "1")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	out = mustRun(t, "rm", "1")
	assert.Contains(t, out, "Deleted session #1")

	_, err = run(t, "show", "1")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	_, err = run(t, "show", "abc")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	// numbers are not reused after a delete
	out = mustRun(t, "log", "long tones @cello 10m")
	assert.Contains(t, out, "Logged session #2")
}

func TestTimerCommands(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "status")
	assert.Contains(t, out, "No practice timer running")

	_, err := run(t, "pause")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	out = mustRun(t, "start", "Piano", "hanon", "--no-ui", "-t", "warmup")
	assert.Contains(t, out, "Started session #1: piano")

	_, err = run(t, "start", "guitar", "--no-ui")
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict), "got %v", err)

	out = mustRun(t, "status")
	assert.Contains(t, out, "Practising")
	assert.Contains(t, out, "session #1: piano")

	mustRun(t, "pause")
	out = mustRun(t, "status")
	assert.Contains(t, out, "Paused")

	_, err = run(t, "pause")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	mustRun(t, "resume")
	_, err = run(t, "resume")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	out = mustRun(t, "stop")
	assert.Contains(t, out, "Stopped session #1: piano")

	_, err = run(t, "stop")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	sessions := listJSON(t, "ls")
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].InProgress)
	assert.Equal(t, []string{"warmup"}, sessions[0].Tags)
}

func TestTagCommands(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "tag", "add", "scales", "-c", "f0a")
	assert.Contains(t, out, "Created tag #scales (#FF00AA)")

	_, err := run(t, "tag", "add", "scales")
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

	mustRun(t, "log", "c major @piano #scales 15m")

	out = mustRun(t, "tag", "ls")
	assert.Contains(t, out, "#scales")

	out = mustRun(t, "tag", "edit", "#scales", "--name", "modes")
	assert.Contains(t, out, "Updated tag #modes")

	_, err = run(t, "tag", "edit", "modes")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	mustRun(t, "tag", "rm", "modes")
	_, err = run(t, "tag", "rm", "modes")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	// the session survives without its tag
	sessions := listJSON(t, "ls")
	require.Len(t, sessions, 1)
	assert.Empty(t, sessions[0].Tags)
}

func TestStatsCommands(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "stats", "--json")
	var empty stats.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &empty))
	assert.Equal(t, stats.Summary{FavoriteInstrument: stats.NoFavorite}, empty)

	mustRun(t, "log", "blues @guitar 1h")
	mustRun(t, "log", "scales @piano 30m")

	out = mustRun(t, "stats", "--json")
	var summary stats.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.InDelta(t, 1.5, summary.TotalHours, 0.001)
	assert.Equal(t, int64(2), summary.TotalSessions)
	assert.InDelta(t, 1.5, summary.WeekHours, 0.001)
	assert.Equal(t, 1, summary.CurrentStreak)
	assert.Equal(t, "guitar", summary.FavoriteInstrument)

	out = mustRun(t, "stats")
	assert.Contains(t, out, "Practice summary")
	assert.Contains(t, out, "1.5 hours")

	out = mustRun(t, "instruments", "--json")
	var totals []stats.InstrumentTotal
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	require.Len(t, totals, 2)
	assert.Equal(t, "guitar", totals[0].Instrument)

	out = mustRun(t, "calendar", "--days", "30")
	assert.Contains(t, out, "1 practice days, 1.5 hours in the last 30 days")

	_, err := run(t, "calendar", "--days=-1")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	out = mustRun(t, "week")
	assert.Contains(t, out, "guitar")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Week of")
}

func TestSearchRanksExactMatchFirst(t *testing.T) {
	setupEnv(t)
	mustRun(t, "log", "comping @guitar 20m")
	mustRun(t, "log", "walking bass under guitar @bass 20m")
	mustRun(t, "log", "sight reading @piano 20m")

	results := listJSON(t, "search", "GUITAR")
	require.Len(t, results, 2)
	assert.Equal(t, "guitar", results[0].Instrument)
	assert.Equal(t, "bass", results[1].Instrument)

	out := mustRun(t, "search", "nothing here")
	assert.Contains(t, out, "No sessions found")
}

func TestAdminSeesEveryone(t *testing.T) {
	setupEnv(t)
	t.Setenv("SHED_ADMINS", "root")
	mustRun(t, "log", "scales @violin 30m")

	t.Setenv("SHED_USER", "root")
	assert.Empty(t, listJSON(t, "ls"))

	all := listJSON(t, "ls", "--all")
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].User)

	// session numbers resolve among the caller's own sessions
	_, err := run(t, "show", "1")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestHelpAndVersion(t *testing.T) {
	out := mustRun(t, "help")
	assert.Contains(t, out, "TIMER:")
	assert.Contains(t, out, "shed log")

	out = mustRun(t, "version")
	assert.Contains(t, out, "shed dev")
}
