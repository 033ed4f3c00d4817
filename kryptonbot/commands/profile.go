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

var Profile = discord.SlashCommandCreate{
	Name:        "profile",
	Description: "👤 View a user's economy profile",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to look up",
			Required:    false,
		},
	},
}

func ProfileHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target := e.User()
		if user, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = user
		}

		account, err := b.Engine.Ensure(ctx, target.ID.String(), target.Username, target.EffectiveAvatarURL())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch the profile. Please try again later.")
		}

		keyStatus := "Not purchased"
		if account.HasKey() {
			keyStatus = "Purchased 🔑"
		}

		lastDaily := "Never"
		if account.LastDaily != nil {
			lastDaily = fmt.Sprintf("<t:%d:R>", account.LastDaily.Unix())
		}

		embed := discord.NewEmbedBuilder().
			SetTitle(fmt.Sprintf("👤 %s's Profile", account.Username)).
			AddField("Coins", utils.FormatNumber(account.Coins), true).
			AddField("Messages", utils.FormatNumber(account.MessagesCount), true).
			AddField("Executor Key", keyStatus, true).
			AddField("Last Daily", lastDaily, true).
			AddField("Member Since", fmt.Sprintf("<t:%d:D>", account.JoinedAt.Unix()), true).
			SetColor(config.InfoColor).
			SetFooter(config.FooterText, "")

		if account.AvatarURL != "" {
			embed.SetThumbnail(account.AvatarURL)
		}
		if account.IsBanned {
			reason := "No reason recorded"
			if account.BanReason != nil {
				reason = *account.BanReason
			}
			embed.AddField("Banned", reason, false).SetColor(config.ErrorColor)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}
