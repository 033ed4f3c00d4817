package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var BuyKey = discord.SlashCommandCreate{
	Name:        "buykey",
	Description: "🔑 Purchase your executor key (delivered via DM)",
}

func BuyKeyHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}

		userID := e.User().ID
		user, err := b.Engine.Ensure(ctx, userID.String(), e.User().Username, e.User().EffectiveAvatarURL())
		if err != nil {
			return utils.EH.UpdateErrorEmbed(e, "Failed to look up your account. Please try again later.")
		}

		// Repeat buyers are never double-charged; the stored key is re-sent.
		if user.HasKey() {
			if err := dmKey(b, userID, *user.Key); err != nil {
				return utils.EH.UpdateErrorEmbed(e, "You already own a key, but I couldn't DM it to you. Check your privacy settings and run `/key`.")
			}
			return utils.EH.UpdateSuccessEmbed(e, "You already own a key. I've re-sent it to your DMs.")
		}

		prices := b.Engine.ShopPrices(ctx)

		err = b.Engine.Purchase(ctx, userID.String(), prices.KeyPrice, func(ctx context.Context) error {
			result, err := b.Engine.GenerateKey(ctx, userID.String())
			if err != nil {
				return err
			}
			if err := dmKey(b, userID, result.Key); err != nil {
				// Undelivered keys are revoked so the account is not left
				// holding an unpaid key.
				if clearErr := b.Engine.ClearKey(ctx, userID.String()); clearErr != nil {
					slog.Error("Failed to revoke undelivered key",
						slog.String("type", "db"),
						slog.String("discord_id", userID.String()),
						slog.Any("error", clearErr))
				}
				return err
			}
			return nil
		})

		switch {
		case err == nil:
		case errors.Is(err, economy.ErrBanned):
			return utils.EH.UpdateErrorEmbed(e, "You are banned from the economy and cannot purchase a key.")
		case errors.Is(err, economy.ErrInsufficientFunds):
			return utils.EH.UpdateErrorEmbed(e, fmt.Sprintf(
				"A key costs **%s coins**, but you only have **%s**.",
				utils.FormatNumber(prices.KeyPrice), utils.FormatNumber(user.Coins)))
		default:
			var delivery *economy.DeliveryFailure
			if errors.As(err, &delivery) {
				return utils.EH.UpdateErrorEmbed(e, "I couldn't DM you the key, so you were not charged. Enable DMs from server members and try again.")
			}
			slog.Error("Key purchase failed",
				slog.String("type", "cmd"),
				slog.String("discord_id", userID.String()),
				slog.Any("error", err))
			return utils.EH.UpdateErrorEmbed(e, "The purchase failed. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "key_purchased", userID.String(), map[string]any{
			"price": prices.KeyPrice,
		}); err != nil {
			slog.Error("Failed to log key purchase",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return utils.EH.UpdateSuccessEmbed(e, fmt.Sprintf(
			"Key purchased for **%s coins**! Check your DMs. 🔑",
			utils.FormatNumber(prices.KeyPrice)))
	}
}

func dmKey(b *kryptonbot.Bot, userID snowflake.ID, key string) error {
	channel, err := b.Client.Rest().CreateDMChannel(userID)
	if err != nil {
		return err
	}
	_, err = b.Client.Rest().CreateMessage(channel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🔑 Your Executor Key",
			Description: fmt.Sprintf("```%s```\nKeep this key secret. It is tied to your account.", key),
			Color:       config.SuccessColor,
			Footer:      &discord.EmbedFooter{Text: config.FooterText},
		}},
	})
	return err
}
