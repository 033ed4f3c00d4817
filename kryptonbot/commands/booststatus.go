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

var BoostStatus = discord.SlashCommandCreate{
	Name:        "booststatus",
	Description: "🚀 Show whether a coin boost is active",
}

func BoostStatusHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		state := b.Boost.Current(ctx)
		if !state.Active || state.EndsAt == nil {
			return utils.EH.CreateInfoEmbed(e, "No coin boost is active right now.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🚀 Coin Boost Active!",
				Description: fmt.Sprintf(
					"All message rewards are multiplied by **%gx**.\nEnds <t:%d:R>.",
					state.Multiplier, state.EndsAt.Unix()),
				Color:  config.BoostColor,
				Footer: &discord.EmbedFooter{Text: config.FooterText},
			}},
		})
	}
}
