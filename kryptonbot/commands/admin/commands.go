package admin

import (
	"errors"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

// Commands holds every admin-facing command. The permission tier is
// enforced inside each handler, not by Discord-side permissions, so the
// audit trail captures denied attempts too.
var Commands = []discord.ApplicationCommandCreate{
	AddCoins,
	RemoveCoins,
	SetCoins,
	MassAddCoins,
	MassRemoveCoins,
	ClearCoins,
	Trust,
	Boost,
	SetSpamTime,
	SetMessagesNeeded,
	Ban,
	Unban,
	Logs,
	Restart,
}

func intPtr(i int) *int {
	return &i
}

// respondDenied renders an authorization failure. Store errors during
// tier resolution deny too, but with a distinct message.
func respondDenied(e *handler.CommandEvent, err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return utils.EH.CreateErrorEmbed(e, "You don't have permission to use this command.")
	}
	return utils.EH.CreateErrorEmbed(e, "Permission check failed. Please try again later.")
}
