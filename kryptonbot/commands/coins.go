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

var Coins = discord.SlashCommandCreate{
	Name:        "coins",
	Description: "💰 View your coin balance (or someone else's)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to look up",
			Required:    false,
		},
	},
}

func CoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}

		balance, err := b.Engine.GetBalance(ctx, target.ID.String(), target.Username, target.EffectiveAvatarURL())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch the balance. Please try again later.")
		}

		subject := "You have"
		if target.ID != e.User().ID {
			subject = fmt.Sprintf("**%s** has", target.Username)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "💰 Coins",
				Description: fmt.Sprintf("%s **%s coins**.", subject, utils.FormatNumber(balance)),
				Color:       config.InfoColor,
				Footer:      &discord.EmbedFooter{Text: config.FooterText},
			}},
		})
	}
}
