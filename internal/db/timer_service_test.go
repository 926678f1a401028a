package db

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
)

func TestStartTimer(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "  cello ", Description: "bach suite 1"})
	require.NoError(t, err)

	assert.Equal(t, "cello", session.Instrument)
	assert.True(t, session.InProgress)
	assert.False(t, session.IsPaused)
	require.NotNil(t, session.StartedAt)
	assert.True(t, session.StartedAt.Equal(clock.Now()))
	assert.Equal(t, time.Duration(0), session.Duration)
	assert.Equal(t, time.Duration(0), session.PausedDuration)
	assert.Equal(t, "2024-03-13", session.SessionDate)
	assert.Equal(t, uint(1), session.DisplayID)

	active, err := store.ActiveTimer(ctx, alice)
	require.NoError(t, err)
	require.True(t, active.Active)
	assert.Equal(t, session.ID, active.Session.ID)
}

func TestStartTimerRequiresInstrument(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.StartTimer(context.Background(), alice, StartTimerRequest{Instrument: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStartTimerConflict(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano"})
	require.NoError(t, err)

	_, err = store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "guitar"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Other users are unaffected.
	_, err = store.StartTimer(ctx, bob, StartTimerRequest{Instrument: "guitar"})
	assert.NoError(t, err)
}

func TestStopTimerRecordsWallTime(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "violin"})
	require.NoError(t, err)

	clock.Advance(42*time.Minute + 7*time.Second)

	stopped, err := store.StopTimer(ctx, alice, session.ID)
	require.NoError(t, err)

	assert.False(t, stopped.InProgress)
	assert.Equal(t, 42*time.Minute+7*time.Second, stopped.Duration)

	active, err := store.ActiveTimer(ctx, alice)
	require.NoError(t, err)
	assert.False(t, active.Active)
	assert.Nil(t, active.Session)

	reloaded, err := store.GetSession(ctx, alice, session.ID)
	require.NoError(t, err)
	assert.Equal(t, stopped.Duration, reloaded.Duration)
}

func TestPauseResumeStopSubtractsPausedTime(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano"})
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	paused, err := store.PauseTimer(ctx, alice, session.ID)
	require.NoError(t, err)
	assert.True(t, paused.IsPaused)
	require.NotNil(t, paused.PausedAt)

	clock.Advance(10 * time.Minute)
	resumed, err := store.ResumeTimer(ctx, alice, session.ID)
	require.NoError(t, err)
	assert.False(t, resumed.IsPaused)
	assert.Nil(t, resumed.PausedAt)
	assert.Equal(t, 10*time.Minute, resumed.PausedDuration)

	clock.Advance(20 * time.Minute)
	stopped, err := store.StopTimer(ctx, alice, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Minute, stopped.Duration)
}

func TestStopWhilePausedExcludesPause(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano"})
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = store.PauseTimer(ctx, alice, session.ID)
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	stopped, err := store.StopTimer(ctx, alice, session.ID)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, stopped.Duration)
	assert.Equal(t, 15*time.Minute, stopped.PausedDuration)
	assert.False(t, stopped.IsPaused)
}

func TestTimerInvalidTransitions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano"})
	require.NoError(t, err)

	_, err = store.ResumeTimer(ctx, alice, session.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "resume while running")

	_, err = store.PauseTimer(ctx, alice, session.ID)
	require.NoError(t, err)
	_, err = store.PauseTimer(ctx, alice, session.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "double pause")

	_, err = store.StopTimer(ctx, alice, session.ID)
	require.NoError(t, err)
	_, err = store.StopTimer(ctx, alice, session.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "double stop")
	_, err = store.PauseTimer(ctx, alice, session.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "pause stopped")

	logged, err := store.CreateSession(ctx, alice, CreateSessionRequest{Instrument: "piano", Duration: time.Hour})
	require.NoError(t, err)
	_, err = store.StopTimer(ctx, alice, logged.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState, "stop logged session")
}

func TestTimerIsOwnerOnly(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano"})
	require.NoError(t, err)

	_, err = store.PauseTimer(ctx, bob, session.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = store.StopTimer(ctx, admin, session.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = store.StopTimer(ctx, alice, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	active, err := store.ActiveTimer(ctx, bob)
	require.NoError(t, err)
	assert.False(t, active.Active)
}

func TestTimerKeepsTags(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, alice, CreateTagRequest{Name: "etudes"})
	require.NoError(t, err)

	session, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano", TagIDs: []uint{tag.ID}})
	require.NoError(t, err)

	stopped, err := store.StopTimer(ctx, alice, session.ID)
	require.NoError(t, err)
	require.Len(t, stopped.Tags, 1)
	assert.Equal(t, "etudes", stopped.Tags[0].Name)
}

func TestConcurrentStartsYieldOneTimer(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "drums"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.IsCode(err, apperr.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, int64(1), countInProgress(t, store, "alice"))
}

func TestRandomTimerSequencesKeepOneActivePerUser(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	callers := []Caller{alice, bob}

	for step := 0; step < 200; step++ {
		c := callers[rng.Intn(len(callers))]
		clock.Advance(time.Duration(rng.Intn(600)) * time.Second)

		active, err := store.ActiveTimer(ctx, c)
		require.NoError(t, err)

		switch op := rng.Intn(4); {
		case op == 0 || !active.Active:
			_, err = store.StartTimer(ctx, c, StartTimerRequest{Instrument: "piano"})
			if active.Active {
				require.ErrorIs(t, err, apperr.ErrConflict)
			} else {
				require.NoError(t, err)
			}
		case op == 1:
			_, err = store.PauseTimer(ctx, c, active.Session.ID)
			checkTransition(t, err, !active.Session.IsPaused)
		case op == 2:
			_, err = store.ResumeTimer(ctx, c, active.Session.ID)
			checkTransition(t, err, active.Session.IsPaused)
		default:
			stopped, err := store.StopTimer(ctx, c, active.Session.ID)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, stopped.Duration, time.Duration(0))
			assert.LessOrEqual(t, stopped.Duration, clock.Now().Sub(*stopped.StartedAt))
		}

		for _, u := range callers {
			require.LessOrEqual(t, countInProgress(t, store, u.UserID), int64(1), "step %d user %s", step, u.UserID)
		}
	}
}

func TestActiveIndexRejectsSecondRunningRow(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.StartTimer(ctx, alice, StartTimerRequest{Instrument: "piano"})
	require.NoError(t, err)

	now := clock.Now()
	sneaky := models.Session{
		UserID:      "alice",
		DisplayID:   99,
		Instrument:  "guitar",
		SessionDate: models.FormatDate(now),
		InProgress:  true,
		StartedAt:   &now,
	}
	err = store.db.WithContext(ctx).Create(&sneaky).Error
	assert.True(t, isDuplicate(err), "err = %v", err)
}

func checkTransition(t *testing.T, err error, legal bool) {
	t.Helper()
	if legal {
		require.NoError(t, err)
		return
	}
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func countInProgress(t *testing.T, store *Store, userID string) int64 {
	t.Helper()
	var n int64
	err := store.db.Model(&models.Session{}).
		Where("user_id = ? AND in_progress = ?", userID, true).
		Count(&n).Error
	require.NoError(t, err)
	return n
}
