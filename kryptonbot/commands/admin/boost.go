package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Boost = discord.SlashCommandCreate{
	Name:        "boost",
	Description: "🚀 Manage the global coin boost",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "start",
			Description: "Start a coin boost for everyone",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionFloat{
					Name:        "multiplier",
					Description: "Reward multiplier, e.g. 2 for double coins",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minutes",
					Description: "How long the boost lasts",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "stop",
			Description: "End the running coin boost early",
		},
	},
}

func BoostHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		subCmd := ""
		if data.SubCommandName != nil {
			subCmd = *data.SubCommandName
		}

		switch subCmd {
		case "start":
			multiplier := data.Float("multiplier")
			minutes := data.Int("minutes")

			if err := b.Auth.Require(ctx, e.User().ID, "boost_start", auth.AdminShared, map[string]any{
				"multiplier": multiplier,
				"minutes":    minutes,
			}); err != nil {
				return respondDenied(e, err)
			}
			if multiplier <= 1 {
				return utils.EH.CreateErrorEmbed(e, "The multiplier must be greater than 1.")
			}

			duration := time.Duration(minutes) * time.Minute
			state, err := b.Boost.Start(ctx, e.User().ID.String(), multiplier, duration)
			if err != nil {
				slog.Error("Failed to start boost",
					slog.String("type", "cmd"),
					slog.Any("error", err))
				return utils.EH.CreateErrorEmbed(e, "Failed to start the boost. Please try again later.")
			}

			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title: "🚀 Coin Boost Started!",
					Description: fmt.Sprintf(
						"All message rewards are now multiplied by **%gx**.\nEnds <t:%d:R>.",
						state.Multiplier, state.EndsAt.Unix()),
					Color:  config.BoostColor,
					Footer: &discord.EmbedFooter{Text: config.FooterText},
				}},
			})

		case "stop":
			if err := b.Auth.Require(ctx, e.User().ID, "boost_stop", auth.AdminShared, nil); err != nil {
				return respondDenied(e, err)
			}

			cancelled, err := b.Boost.Cancel(ctx, e.User().ID.String())
			if err != nil {
				slog.Error("Failed to stop boost",
					slog.String("type", "cmd"),
					slog.Any("error", err))
				return utils.EH.CreateErrorEmbed(e, "Failed to stop the boost. Please try again later.")
			}
			if !cancelled {
				return utils.EH.CreateInfoEmbed(e, "No coin boost is active right now.")
			}
			return utils.EH.CreateSuccessEmbed(e, "The coin boost has been stopped.")

		default:
			return utils.EH.CreateErrorEmbed(e, "Invalid subcommand")
		}
	}
}
