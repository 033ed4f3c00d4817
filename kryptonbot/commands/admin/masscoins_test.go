package admin

import (
	"context"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMassCoins_TrustedUserIsAuthorized(t *testing.T) {
	ownerID := snowflake.ID(1)
	trustedID := snowflake.ID(2)
	plainID := snowflake.ID(3)

	trusted := repotest.NewTrustedStore()
	audit := repotest.NewAuditStore()
	require.NoError(t, trusted.Add(context.Background(), trustedID.String(), "bob", ownerID.String()))
	resolver := auth.NewResolver(ownerID, trusted, audit)

	for _, operation := range []string{"mass_add_coins", "mass_remove_coins"} {
		assert.NoError(t, resolver.Require(context.Background(), ownerID, operation, massCoinsLevel, nil))
		assert.NoError(t, resolver.Require(context.Background(), trustedID, operation, massCoinsLevel, nil))

		err := resolver.Require(context.Background(), plainID, operation, massCoinsLevel, nil)
		var authErr *auth.Error
		require.ErrorAs(t, err, &authErr)
	}
}
