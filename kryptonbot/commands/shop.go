package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Shop = discord.SlashCommandCreate{
	Name:        "shop",
	Description: "🛒 Show items available for purchase",
}

func ShopHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		prices := b.Engine.ShopPrices(ctx)

		roleName := "Premium Role"
		if guildID := e.GuildID(); guildID != nil {
			if role, found := b.Client.Caches().Role(*guildID, b.Cfg.Economy.PremiumRoleID); found {
				roleName = role.Name
			}
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🛒 Kryptonite Shop",
				Description: "Spend your coins on premium items:",
				Fields: []discord.EmbedField{
					{
						Name:   "🔑 Executor Key",
						Value:  fmt.Sprintf("• Price: **%s coins**\n• Command: `/buykey`", utils.FormatNumber(prices.KeyPrice)),
						Inline: boolPtr(true),
					},
					{
						Name:   "👑 " + roleName,
						Value:  fmt.Sprintf("• Price: **%s coins**\n• Command: `/buyrole`", utils.FormatNumber(prices.RolePrice)),
						Inline: boolPtr(true),
					},
				},
				Color:  config.BoostColor,
				Footer: &discord.EmbedFooter{Text: config.FooterText},
			}},
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}
