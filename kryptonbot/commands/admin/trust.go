package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Trust = discord.SlashCommandCreate{
	Name:        "trust",
	Description: "🛡️ Manage the trusted admin list",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Grant a user trusted admin access",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to trust",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Revoke a user's trusted admin access",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to untrust",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List all trusted admins",
		},
	},
}

func TrustHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		subCmd := ""
		if data.SubCommandName != nil {
			subCmd = *data.SubCommandName
		}

		args := map[string]any{"subcommand": subCmd}
		if user, ok := data.OptUser("user"); ok {
			args["target"] = user.ID.String()
		}
		if err := b.Auth.Require(ctx, e.User().ID, "trust", auth.OwnerOnly, args); err != nil {
			return respondDenied(e, err)
		}

		switch subCmd {
		case "add":
			return handleTrustAdd(ctx, b, e)
		case "remove":
			return handleTrustRemove(ctx, b, e)
		case "list":
			return handleTrustList(ctx, b, e)
		default:
			return utils.EH.CreateErrorEmbed(e, "Invalid subcommand")
		}
	}
}

func handleTrustAdd(ctx context.Context, b *kryptonbot.Bot, e *handler.CommandEvent) error {
	target := e.SlashCommandInteractionData().User("user")
	if target.Bot {
		return utils.EH.CreateErrorEmbed(e, "Bots cannot be trusted admins.")
	}
	if target.ID == b.Cfg.Bot.OwnerID {
		return utils.EH.CreateInfoEmbed(e, "The owner already has full access.")
	}

	if err := b.TrustedUserRepository.Add(ctx, target.ID.String(), target.Username, e.User().ID.String()); err != nil {
		slog.Error("Failed to add trusted user",
			slog.String("type", "db"),
			slog.String("target", target.ID.String()),
			slog.Any("error", err))
		return utils.EH.CreateErrorEmbed(e, "Failed to update the trusted list. Please try again later.")
	}

	if err := b.AuditLogRepository.Append(ctx, "trusted_added", e.User().ID.String(), map[string]any{
		"target": target.ID.String(),
	}); err != nil {
		slog.Error("Failed to log trust grant",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"**%s** is now a trusted admin. 🛡️", target.Username))
}

func handleTrustRemove(ctx context.Context, b *kryptonbot.Bot, e *handler.CommandEvent) error {
	target := e.SlashCommandInteractionData().User("user")

	removed, err := b.TrustedUserRepository.Remove(ctx, target.ID.String())
	if err != nil {
		slog.Error("Failed to remove trusted user",
			slog.String("type", "db"),
			slog.String("target", target.ID.String()),
			slog.Any("error", err))
		return utils.EH.CreateErrorEmbed(e, "Failed to update the trusted list. Please try again later.")
	}
	if !removed {
		return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("**%s** was not a trusted admin.", target.Username))
	}

	if err := b.AuditLogRepository.Append(ctx, "trusted_removed", e.User().ID.String(), map[string]any{
		"target": target.ID.String(),
	}); err != nil {
		slog.Error("Failed to log trust revocation",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
		"**%s** is no longer a trusted admin.", target.Username))
}

func handleTrustList(ctx context.Context, b *kryptonbot.Bot, e *handler.CommandEvent) error {
	trusted, err := b.TrustedUserRepository.List(ctx)
	if err != nil {
		return utils.EH.CreateErrorEmbed(e, "Failed to fetch the trusted list. Please try again later.")
	}
	if len(trusted) == 0 {
		return utils.EH.CreateInfoEmbed(e, "No trusted admins are configured.")
	}

	var description strings.Builder
	for _, tu := range trusted {
		description.WriteString(fmt.Sprintf("• **%s** (<@%s>) — added <t:%d:D>\n",
			tu.Username, tu.DiscordID, tu.AddedAt.Unix()))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🛡️ Trusted Admins",
			Description: description.String(),
			Color:       config.InfoColor,
			Footer:      &discord.EmbedFooter{Text: config.FooterText},
		}},
	})
}
