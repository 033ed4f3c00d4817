package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

const defaultLogLimit = 15

var Logs = discord.SlashCommandCreate{
	Name:        "logs",
	Description: "📜 Show recent audit log entries",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "limit",
			Description: "How many entries to show",
			Required:    false,
			MinValue:    intPtr(1),
			MaxValue:    intPtr(25),
		},
	},
}

func LogsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Auth.Require(ctx, e.User().ID, "logs", auth.AdminShared, nil); err != nil {
			return respondDenied(e, err)
		}

		limit := defaultLogLimit
		if l, ok := e.SlashCommandInteractionData().OptInt("limit"); ok {
			limit = l
		}

		entries, err := b.AuditLogRepository.Recent(ctx, limit)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch the audit log. Please try again later.")
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "The audit log is empty.")
		}

		var description strings.Builder
		for _, entry := range entries {
			description.WriteString(fmt.Sprintf("<t:%d:R> `%s` by <@%s>\n",
				entry.CreatedAt.Unix(), entry.Action, entry.DiscordID))
			if len(entry.Details) > 2 {
				description.WriteString(fmt.Sprintf("```json\n%s\n```\n", string(entry.Details)))
			}
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "📜 Audit Log",
				Description: description.String(),
				Color:       config.InfoColor,
				Footer:      &discord.EmbedFooter{Text: config.FooterText},
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
