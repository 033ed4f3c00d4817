// Package repotest provides in-memory repository implementations with
// the same observable semantics as the Postgres-backed ones, for use in
// unit tests.
package repotest

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/models"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
)

// UserStore is an in-memory UserRepository. Err, when set, is returned
// by every method; FailIDs injects per-user failures into AddCoins.
type UserStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	nextID  int64
	Err     error
	FailIDs map[string]error
}

var _ repositories.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: map[string]*models.User{}}
}

// Seed inserts a user directly, bypassing Ensure.
func (s *UserStore) Seed(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	s.users[user.DiscordID] = user
}

func (s *UserStore) get(discordID string) (*models.User, bool) {
	user, ok := s.users[discordID]
	return user, ok
}

func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (s *UserStore) GetByDiscordID(_ context.Context, discordID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.get(discordID)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clone(user), nil
}

func (s *UserStore) GetByKey(_ context.Context, key string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, user := range s.users {
		if user.Key != nil && *user.Key == key {
			return clone(user), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *UserStore) Ensure(_ context.Context, discordID, username, avatarURL string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	now := time.Now()
	user, ok := s.get(discordID)
	if !ok {
		s.nextID++
		user = &models.User{
			ID:        s.nextID,
			DiscordID: discordID,
			Username:  username,
			AvatarURL: avatarURL,
			JoinedAt:  now,
			CreatedAt: now,
		}
		s.users[discordID] = user
	}
	if username != "" {
		user.Username = username
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	user.UpdatedAt = now
	return clone(user), nil
}

func (s *UserStore) AddCoins(_ context.Context, discordID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	if err, ok := s.FailIDs[discordID]; ok {
		return 0, err
	}
	user, ok := s.get(discordID)
	if !ok {
		return 0, sql.ErrNoRows
	}
	user.Coins += delta
	if user.Coins < 0 {
		user.Coins = 0
	}
	return user.Coins, nil
}

func (s *UserStore) SetCoins(_ context.Context, discordID string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if user, ok := s.get(discordID); ok {
		user.Coins = amount
	}
	return nil
}

func (s *UserStore) ClaimDaily(_ context.Context, discordID string, amount int64, window time.Duration, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	user, ok := s.get(discordID)
	if !ok {
		return false, nil
	}
	if user.LastDaily != nil && user.LastDaily.After(now.Add(-window)) {
		return false, nil
	}
	user.Coins += amount
	claimed := now
	user.LastDaily = &claimed
	return true, nil
}

func (s *UserStore) AssignKey(_ context.Context, discordID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	user, ok := s.get(discordID)
	if !ok || user.Key != nil {
		return false, nil
	}
	user.Key = &key
	return true, nil
}

func (s *UserStore) ClearKey(_ context.Context, discordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if user, ok := s.get(discordID); ok {
		user.Key = nil
	}
	return nil
}

func (s *UserStore) SetBanned(_ context.Context, discordID string, banned bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.get(discordID)
	if !ok {
		return nil
	}
	user.IsBanned = banned
	if banned && reason != "" {
		user.BanReason = &reason
	} else if !banned {
		user.BanReason = nil
	}
	return nil
}

func (s *UserStore) IncrementMessageCount(_ context.Context, discordID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	user, ok := s.get(discordID)
	if !ok {
		return 0, sql.ErrNoRows
	}
	user.MessagesCount++
	return user.MessagesCount, nil
}

func (s *UserStore) GetTopUsers(_ context.Context, limit int) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var users []*models.User
	for _, user := range s.users {
		users = append(users, clone(user))
	}
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			if users[j].Coins > users[i].Coins {
				users[i], users[j] = users[j], users[i]
			}
		}
	}
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *UserStore) GetAllIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *UserStore) CountUsers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.users), nil
}

func (s *UserStore) TotalCoins(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var total int64
	for _, user := range s.users {
		total += user.Coins
	}
	return total, nil
}

func (s *UserStore) ResetAllCoins(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var affected int64
	for _, user := range s.users {
		if user.Coins != 0 {
			user.Coins = 0
			affected++
		}
	}
	return affected, nil
}

// SettingsStore is an in-memory SettingsRepository.
type SettingsStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
	Err    error
}

var _ repositories.SettingsRepository = (*SettingsStore)(nil)

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{values: map[string]json.RawMessage{}}
}

func (s *SettingsStore) Get(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	raw, ok := s.values[key]
	if !ok {
		return repositories.ErrSettingNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (s *SettingsStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *SettingsStore) SetIfAbsent(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.values[key]; ok {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

// TrustedStore is an in-memory TrustedUserRepository.
type TrustedStore struct {
	mu      sync.Mutex
	entries map[string]*models.TrustedUser
	Err     error
}

var _ repositories.TrustedUserRepository = (*TrustedStore)(nil)

func NewTrustedStore() *TrustedStore {
	return &TrustedStore{entries: map[string]*models.TrustedUser{}}
}

func (s *TrustedStore) Add(_ context.Context, discordID, username, addedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.entries[discordID] = &models.TrustedUser{
		DiscordID: discordID,
		Username:  username,
		AddedBy:   addedBy,
		AddedAt:   time.Now(),
	}
	return nil
}

func (s *TrustedStore) Remove(_ context.Context, discordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.entries[discordID]; !ok {
		return false, nil
	}
	delete(s.entries, discordID)
	return true, nil
}

func (s *TrustedStore) IsTrusted(_ context.Context, discordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.entries[discordID]
	return ok, nil
}

func (s *TrustedStore) List(_ context.Context) ([]*models.TrustedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*models.TrustedUser
	for _, tu := range s.entries {
		c := *tu
		out = append(out, &c)
	}
	return out, nil
}

// AuditStore is an in-memory AuditLogRepository that records every entry
// for assertions.
type AuditStore struct {
	mu      sync.Mutex
	entries []*models.SystemLog
	Err     error
}

var _ repositories.AuditLogRepository = (*AuditStore)(nil)

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Append(_ context.Context, action, discordID string, details map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	s.entries = append(s.entries, &models.SystemLog{
		ID:        int64(len(s.entries) + 1),
		Action:    action,
		DiscordID: discordID,
		Details:   payload,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *AuditStore) Recent(_ context.Context, limit int) ([]*models.SystemLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*models.SystemLog
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		c := *s.entries[i]
		out = append(out, &c)
	}
	return out, nil
}

// ByAction returns all recorded entries with the given action.
func (s *AuditStore) ByAction(action string) []*models.SystemLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SystemLog
	for _, entry := range s.entries {
		if entry.Action == action {
			c := *entry
			out = append(out, &c)
		}
	}
	return out
}
