package boost

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
)

// Scheduler owns the global reward multiplier. The persisted
// system_settings row is the source of truth; the in-memory copy is a
// write-through cache. Every expiry timer is bound to a generation so a
// stale timer from a superseded boost can never clobber a newer one, and
// reconciling an active boost out of the store after a restart re-arms
// the timer from the remaining duration.
type Scheduler struct {
	settings repositories.SettingsRepository
	audit    repositories.AuditLogRepository

	mu         sync.Mutex
	state      models.BoostState
	generation uint64
	primed     bool
	timer      *time.Timer

	now func() time.Time
}

func NewScheduler(settings repositories.SettingsRepository, audit repositories.AuditLogRepository) *Scheduler {
	return &Scheduler{
		settings: settings,
		audit:    audit,
		state:    models.BoostState{Multiplier: 1},
		now:      time.Now,
	}
}

// Start activates a boost. A running boost is superseded: its pending
// expiry becomes a no-op via the generation bump.
func (s *Scheduler) Start(ctx context.Context, actorID string, multiplier float64, duration time.Duration) (models.BoostState, error) {
	if multiplier <= 1 {
		return models.BoostState{}, errors.New("multiplier must be greater than 1")
	}
	if duration <= 0 {
		return models.BoostState{}, errors.New("duration must be positive")
	}

	endsAt := s.now().Add(duration)
	state := models.BoostState{
		Active:     true,
		Multiplier: multiplier,
		EndsAt:     &endsAt,
	}

	// Store first: the boost is not considered started until persisted.
	if err := s.settings.Set(ctx, config.SettingBoost, state); err != nil {
		return models.BoostState{}, err
	}

	s.mu.Lock()
	s.state = state
	s.primed = true
	s.generation++
	s.armLocked(duration, s.generation)
	s.mu.Unlock()

	if err := s.audit.Append(ctx, "boost_start", actorID, map[string]any{
		"multiplier": multiplier,
		"duration":   duration.String(),
		"ends_at":    endsAt,
	}); err != nil {
		slog.Error("Failed to log boost start",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	slog.Info("Coin boost started",
		slog.Float64("multiplier", multiplier),
		slog.Duration("duration", duration))

	return state, nil
}

// armLocked schedules the expiry action. Callers hold s.mu.
func (s *Scheduler) armLocked(d time.Duration, generation uint64) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, func() {
		s.expire(generation)
	})
}

// expire fires when a boost's window elapses. It only acts if the
// generation still matches the boost it was armed for.
func (s *Scheduler) expire(generation uint64) {
	s.mu.Lock()
	if generation != s.generation || !s.state.Active {
		s.mu.Unlock()
		return
	}
	multiplier := s.state.Multiplier
	s.state = models.BoostState{Multiplier: 1}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	if err := s.settings.Set(ctx, config.SettingBoost, models.BoostState{Multiplier: 1}); err != nil {
		slog.Error("Failed to persist boost expiry",
			slog.String("type", "db"),
			slog.Any("error", err))
	}
	if err := s.audit.Append(ctx, "boost_end", "system", map[string]any{
		"multiplier": multiplier,
	}); err != nil {
		slog.Error("Failed to log boost end",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	slog.Info("Coin boost ended", slog.Float64("multiplier", multiplier))
}

// Current returns the boost state, reconciling against the store whenever
// the cache reports inactive. That covers both the never-primed case
// after a restart and an in-memory reset racing a stored boost. Adopting
// a stored active boost re-arms the expiry timer from ends_at.
func (s *Scheduler) Current(ctx context.Context) models.BoostState {
	s.mu.Lock()
	if s.primed && s.state.Active && s.state.EndsAt != nil && s.state.EndsAt.After(s.now()) {
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.mu.Unlock()

	var stored models.BoostState
	err := s.settings.Get(ctx, config.SettingBoost, &stored)
	if err != nil {
		if !errors.Is(err, repositories.ErrSettingNotFound) {
			slog.Error("Failed to read boost state",
				slog.String("type", "db"),
				slog.Any("error", err))
		}
		stored = models.BoostState{Multiplier: 1}
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.primed = true

	if stored.Active && stored.EndsAt != nil && stored.EndsAt.After(now) {
		s.state = stored
		s.generation++
		s.armLocked(stored.EndsAt.Sub(now), s.generation)
		return s.state
	}

	if stored.Active {
		// Stored boost outlived its window, likely a restart raced the
		// old timer. Reset the persisted copy so state inspection agrees.
		if err := s.settings.Set(ctx, config.SettingBoost, models.BoostState{Multiplier: 1}); err != nil {
			slog.Error("Failed to reset expired boost",
				slog.String("type", "db"),
				slog.Any("error", err))
		}
	}
	s.state = models.BoostState{Multiplier: 1}
	return s.state
}

// Cancel ends a running boost before its window elapses. Returns false
// when no boost was active.
func (s *Scheduler) Cancel(ctx context.Context, actorID string) (bool, error) {
	current := s.Current(ctx)
	if !current.Active {
		return false, nil
	}

	s.mu.Lock()
	multiplier := s.state.Multiplier
	s.state = models.BoostState{Multiplier: 1}
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if err := s.settings.Set(ctx, config.SettingBoost, models.BoostState{Multiplier: 1}); err != nil {
		return true, err
	}
	if err := s.audit.Append(ctx, "boost_end", actorID, map[string]any{
		"multiplier": multiplier,
		"cancelled":  true,
	}); err != nil {
		slog.Error("Failed to log boost cancel",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	slog.Info("Coin boost cancelled", slog.Float64("multiplier", multiplier))
	return true, nil
}

// MultiplierNow returns the multiplier to apply to a reward granted at
// this moment. Computed per award, never cached across awards.
func (s *Scheduler) MultiplierNow(ctx context.Context) float64 {
	return s.Current(ctx).MultiplierAt(s.now())
}

// Stop cancels any pending expiry timer. The persisted state is left
// as-is; the next process reconciles it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
