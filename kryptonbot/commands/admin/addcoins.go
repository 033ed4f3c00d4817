package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var AddCoins = discord.SlashCommandCreate{
	Name:        "addcoins",
	Description: "💰 Add coins to a user's balance",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to credit",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Number of coins to add",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

var RemoveCoins = discord.SlashCommandCreate{
	Name:        "removecoins",
	Description: "💸 Remove coins from a user's balance",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to debit",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Number of coins to remove",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

var SetCoins = discord.SlashCommandCreate{
	Name:        "setcoins",
	Description: "🎯 Set a user's balance to an exact value",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user to update",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "The new balance",
			Required:    true,
			MinValue:    intPtr(0),
		},
	},
}

func AddCoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return adjustCoinsHandler(b, "addcoins", 1)
}

func RemoveCoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return adjustCoinsHandler(b, "removecoins", -1)
}

// adjustCoinsHandler serves both signs of the delta command; they differ
// only in direction and name.
func adjustCoinsHandler(b *kryptonbot.Bot, operation string, sign int64) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		amount := int64(data.Int("amount"))

		if err := b.Auth.Require(ctx, e.User().ID, operation, auth.AdminShared, map[string]any{
			"target": target.ID.String(),
			"amount": amount,
		}); err != nil {
			return respondDenied(e, err)
		}

		if _, err := b.Engine.Ensure(ctx, target.ID.String(), target.Username, target.EffectiveAvatarURL()); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the target user.")
		}

		newBalance, err := b.Engine.AddBalance(ctx, target.ID.String(), sign*amount)
		if err != nil {
			slog.Error("Balance adjustment failed",
				slog.String("type", "db"),
				slog.String("operation", operation),
				slog.String("target", target.ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to update the balance. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "coins_adjusted", e.User().ID.String(), map[string]any{
			"operation": operation,
			"target":    target.ID.String(),
			"delta":     sign * amount,
		}); err != nil {
			slog.Error("Failed to log balance adjustment",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		verb := "Added"
		preposition := "to"
		if sign < 0 {
			verb = "Removed"
			preposition = "from"
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"%s **%s coins** %s **%s**. New balance: **%s**.",
			verb, utils.FormatNumber(amount), preposition, target.Username,
			utils.FormatNumber(newBalance)))
	}
}

func SetCoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := data.User("user")
		amount := int64(data.Int("amount"))

		if err := b.Auth.Require(ctx, e.User().ID, "setcoins", auth.AdminShared, map[string]any{
			"target": target.ID.String(),
			"amount": amount,
		}); err != nil {
			return respondDenied(e, err)
		}

		if _, err := b.Engine.Ensure(ctx, target.ID.String(), target.Username, target.EffectiveAvatarURL()); err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up the target user.")
		}

		if err := b.Engine.SetBalance(ctx, target.ID.String(), amount); err != nil {
			slog.Error("Balance set failed",
				slog.String("type", "db"),
				slog.String("target", target.ID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to update the balance. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "coins_adjusted", e.User().ID.String(), map[string]any{
			"operation": "setcoins",
			"target":    target.ID.String(),
			"amount":    amount,
		}); err != nil {
			slog.Error("Failed to log balance set",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"Set **%s**'s balance to **%s coins**.",
			target.Username, utils.FormatNumber(amount)))
	}
}
