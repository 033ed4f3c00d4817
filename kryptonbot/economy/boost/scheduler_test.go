package boost

import (
	"context"
	"testing"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping. The real expiry timer
// still runs on the wall clock, so tests exercise the reconciliation
// paths in Current instead of waiting for AfterFunc.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestScheduler() (*Scheduler, *repotest.SettingsStore, *repotest.AuditStore, *fakeClock) {
	settings := repotest.NewSettingsStore()
	audit := repotest.NewAuditStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewScheduler(settings, audit)
	s.now = clock.now
	return s, settings, audit, clock
}

func TestScheduler_StartValidation(t *testing.T) {
	s, _, _, _ := newTestScheduler()

	_, err := s.Start(context.Background(), "1", 1.0, time.Hour)
	assert.Error(t, err)

	_, err = s.Start(context.Background(), "1", 2.0, 0)
	assert.Error(t, err)
}

func TestScheduler_MultiplierDuringAndAfterWindow(t *testing.T) {
	s, _, audit, clock := newTestScheduler()

	state, err := s.Start(context.Background(), "1", 2.5, time.Hour)
	require.NoError(t, err)
	assert.True(t, state.Active)
	assert.Equal(t, 2.5, s.MultiplierNow(context.Background()))
	assert.Len(t, audit.ByAction("boost_start"), 1)

	clock.advance(30 * time.Minute)
	assert.Equal(t, 2.5, s.MultiplierNow(context.Background()))

	clock.advance(31 * time.Minute)
	assert.Equal(t, 1.0, s.MultiplierNow(context.Background()))
	assert.False(t, s.Current(context.Background()).Active)
}

func TestScheduler_RestartReconciliation(t *testing.T) {
	s, settings, _, clock := newTestScheduler()

	// Simulate state left behind by a previous process.
	endsAt := clock.now().Add(45 * time.Minute)
	require.NoError(t, settings.Set(context.Background(), config.SettingBoost, models.BoostState{
		Active:     true,
		Multiplier: 3,
		EndsAt:     &endsAt,
	}))

	state := s.Current(context.Background())
	assert.True(t, state.Active)
	assert.Equal(t, 3.0, state.Multiplier)
	assert.Equal(t, 3.0, s.MultiplierNow(context.Background()))
}

func TestScheduler_RestartReconciliation_Expired(t *testing.T) {
	s, settings, _, clock := newTestScheduler()

	endsAt := clock.now().Add(-time.Minute)
	require.NoError(t, settings.Set(context.Background(), config.SettingBoost, models.BoostState{
		Active:     true,
		Multiplier: 3,
		EndsAt:     &endsAt,
	}))

	state := s.Current(context.Background())
	assert.False(t, state.Active)

	// The stale stored copy is reset too.
	var stored models.BoostState
	require.NoError(t, settings.Get(context.Background(), config.SettingBoost, &stored))
	assert.False(t, stored.Active)
}

func TestScheduler_StaleExpiryIsIgnored(t *testing.T) {
	s, _, _, _ := newTestScheduler()

	_, err := s.Start(context.Background(), "1", 2, time.Hour)
	require.NoError(t, err)
	s.mu.Lock()
	staleGeneration := s.generation
	s.mu.Unlock()

	// A second boost supersedes the first; the first timer's generation
	// no longer matches.
	_, err = s.Start(context.Background(), "1", 4, 2*time.Hour)
	require.NoError(t, err)

	s.expire(staleGeneration)
	assert.Equal(t, 4.0, s.MultiplierNow(context.Background()))
}

func TestScheduler_Cancel(t *testing.T) {
	s, settings, audit, _ := newTestScheduler()

	cancelled, err := s.Cancel(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, cancelled)

	_, err = s.Start(context.Background(), "1", 2, time.Hour)
	require.NoError(t, err)

	cancelled, err = s.Cancel(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, 1.0, s.MultiplierNow(context.Background()))
	assert.Len(t, audit.ByAction("boost_end"), 1)

	var stored models.BoostState
	require.NoError(t, settings.Get(context.Background(), config.SettingBoost, &stored))
	assert.False(t, stored.Active)
}
