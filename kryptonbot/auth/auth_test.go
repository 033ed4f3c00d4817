package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID   = snowflake.ID(1)
	trustedID = snowflake.ID(2)
	plainID   = snowflake.ID(3)
)

func newTestResolver(t *testing.T) (*Resolver, *repotest.TrustedStore, *repotest.AuditStore) {
	t.Helper()
	trusted := repotest.NewTrustedStore()
	audit := repotest.NewAuditStore()
	require.NoError(t, trusted.Add(context.Background(), trustedID.String(), "bob", ownerID.String()))
	return NewResolver(ownerID, trusted, audit), trusted, audit
}

func TestResolver_ResolveTier(t *testing.T) {
	r, _, _ := newTestResolver(t)

	tests := []struct {
		name  string
		actor snowflake.ID
		want  Tier
	}{
		{name: "owner", actor: ownerID, want: TierOwner},
		{name: "trusted", actor: trustedID, want: TierTrusted},
		{name: "everyone", actor: plainID, want: TierEveryone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := r.ResolveTier(context.Background(), tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tier)
		})
	}
}

func TestResolver_Require(t *testing.T) {
	tests := []struct {
		name    string
		actor   snowflake.ID
		level   Level
		allowed bool
	}{
		{name: "owner passes owner-only", actor: ownerID, level: OwnerOnly, allowed: true},
		{name: "owner passes shared", actor: ownerID, level: AdminShared, allowed: true},
		{name: "trusted passes shared", actor: trustedID, level: AdminShared, allowed: true},
		{name: "trusted denied owner-only", actor: trustedID, level: OwnerOnly, allowed: false},
		{name: "everyone denied shared", actor: plainID, level: AdminShared, allowed: false},
		{name: "everyone denied owner-only", actor: plainID, level: OwnerOnly, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestResolver(t)
			err := r.Require(context.Background(), tt.actor, "op", tt.level, nil)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				var authErr *Error
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, "op", authErr.Operation)
			}
		})
	}
}

func TestResolver_Require_AuditsDenials(t *testing.T) {
	r, _, audit := newTestResolver(t)

	err := r.Require(context.Background(), plainID, "massaddcoins", AdminShared, map[string]any{
		"amount": 100,
	})
	var authErr *Error
	require.ErrorAs(t, err, &authErr)

	entries := audit.ByAction("unauthorized_attempt")
	require.Len(t, entries, 1)
	assert.Equal(t, plainID.String(), entries[0].DiscordID)
	assert.Contains(t, string(entries[0].Details), "massaddcoins")
	assert.Contains(t, string(entries[0].Details), "100")
}

func TestResolver_Require_FailsClosed(t *testing.T) {
	r, trusted, _ := newTestResolver(t)
	trusted.Err = errors.New("connection refused")

	err := r.Require(context.Background(), trustedID, "op", AdminShared, nil)
	require.Error(t, err)

	// A store failure is not a tier denial; it must not masquerade as one.
	var authErr *Error
	assert.False(t, errors.As(err, &authErr))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "owner", TierOwner.String())
	assert.Equal(t, "trusted", TierTrusted.String())
	assert.Equal(t, "everyone", TierEveryone.String())
}
