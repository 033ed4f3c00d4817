package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
)

var ClearCoins = discord.SlashCommandCreate{
	Name:        "clearcoins",
	Description: "🧹 Reset every user's balance to zero",
}

// ClearCoinsHandler only asks for confirmation. The actual wipe runs in
// the component handler once the owner presses the confirm button; the
// button deadline is embedded in the custom ID so a stale prompt cannot
// be confirmed later.
func ClearCoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Auth.Require(ctx, e.User().ID, "clearcoins", auth.OwnerOnly, nil); err != nil {
			return respondDenied(e, err)
		}

		deadline := time.Now().Add(config.ConfirmationTimeout).Unix()

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "⚠️ Reset All Balances?",
				Description: fmt.Sprintf(
					"This sets **every** user's balance to zero. It cannot be undone.\nThe prompt expires <t:%d:R>.",
					deadline),
				Color:  config.WarningColor,
				Footer: &discord.EmbedFooter{Text: config.FooterText},
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewDangerButton("Yes, reset everything", fmt.Sprintf("/clearcoins/confirm/%d", deadline)),
					discord.NewSecondaryButton("Cancel", fmt.Sprintf("/clearcoins/cancel/%d", deadline)),
				),
			},
		})
	}
}
