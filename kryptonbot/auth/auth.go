package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
)

// Tier is an authorization level. Higher values include all privileges of
// the lower ones.
type Tier int

const (
	TierEveryone Tier = iota
	TierTrusted
	TierOwner
)

func (t Tier) String() string {
	switch t {
	case TierOwner:
		return "owner"
	case TierTrusted:
		return "trusted"
	default:
		return "everyone"
	}
}

// Level tags an operation with the tier it requires.
type Level int

const (
	// AdminShared operations accept owner or trusted actors.
	AdminShared Level = iota
	// OwnerOnly operations accept exactly the configured owner.
	OwnerOnly
)

// Error is returned on denial so the surface can render it as a
// permission failure rather than a system error.
type Error struct {
	Operation string
	Tier      Tier
	Required  Level
}

func (e *Error) Error() string {
	return fmt.Sprintf("tier %s is not authorized for %s", e.Tier, e.Operation)
}

// Resolver evaluates the three-tier permission model. The owner is
// configured out of band; trusted membership lives in the store.
type Resolver struct {
	ownerID snowflake.ID
	trusted repositories.TrustedUserRepository
	audit   repositories.AuditLogRepository
}

func NewResolver(ownerID snowflake.ID, trusted repositories.TrustedUserRepository, audit repositories.AuditLogRepository) *Resolver {
	return &Resolver{
		ownerID: ownerID,
		trusted: trusted,
		audit:   audit,
	}
}

// ResolveTier returns the actor's tier. A store failure is returned as an
// error and must be treated as a denial by the caller, never as Everyone.
func (r *Resolver) ResolveTier(ctx context.Context, actorID snowflake.ID) (Tier, error) {
	if actorID == r.ownerID {
		return TierOwner, nil
	}
	trusted, err := r.trusted.IsTrusted(ctx, actorID.String())
	if err != nil {
		return TierEveryone, fmt.Errorf("failed to resolve tier for %s: %w", actorID, err)
	}
	if trusted {
		return TierTrusted, nil
	}
	return TierEveryone, nil
}

// Require authorizes actorID for the named operation. Denials append an
// unauthorized_attempt audit entry carrying the operation and its raw
// arguments before the error is returned; the operation itself never ran.
// Tier resolution failures deny by default.
func (r *Resolver) Require(ctx context.Context, actorID snowflake.ID, operation string, level Level, args map[string]any) error {
	tier, err := r.ResolveTier(ctx, actorID)
	if err != nil {
		slog.Error("Tier resolution failed, denying",
			slog.String("type", "db"),
			slog.String("operation", operation),
			slog.String("actor_id", actorID.String()),
			slog.Any("error", err))
		return err
	}

	allowed := tier == TierOwner || (level == AdminShared && tier == TierTrusted)
	if allowed {
		return nil
	}

	details := map[string]any{
		"operation": operation,
		"tier":      tier.String(),
	}
	for k, v := range args {
		details[k] = v
	}
	if auditErr := r.audit.Append(ctx, "unauthorized_attempt", actorID.String(), details); auditErr != nil {
		slog.Error("Failed to record unauthorized attempt",
			slog.String("type", "db"),
			slog.String("operation", operation),
			slog.Any("error", auditErr))
	}

	slog.Warn("Unauthorized command attempt",
		slog.String("operation", operation),
		slog.String("actor_id", actorID.String()),
		slog.String("tier", tier.String()))

	return &Error{Operation: operation, Tier: tier, Required: level}
}
