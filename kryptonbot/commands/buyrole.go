package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var BuyRole = discord.SlashCommandCreate{
	Name:        "buyrole",
	Description: "👑 Purchase the premium role",
}

func BuyRoleHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		guildID := e.GuildID()
		member := e.Member()
		if guildID == nil || member == nil {
			return utils.EH.CreateErrorEmbed(e, "This command only works inside a server.")
		}

		roleID := b.Cfg.Economy.PremiumRoleID
		if slices.Contains(member.RoleIDs, roleID) {
			return utils.EH.CreateInfoEmbed(e, "You already have the premium role. 👑")
		}

		userID := e.User().ID
		user, err := b.Engine.Ensure(ctx, userID.String(), e.User().Username, e.User().EffectiveAvatarURL())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to look up your account. Please try again later.")
		}

		prices := b.Engine.ShopPrices(ctx)

		err = b.Engine.Purchase(ctx, userID.String(), prices.RolePrice, func(ctx context.Context) error {
			return b.Client.Rest().AddMemberRole(*guildID, userID, roleID)
		})

		switch {
		case err == nil:
		case errors.Is(err, economy.ErrBanned):
			return utils.EH.CreateErrorEmbed(e, "You are banned from the economy and cannot purchase the role.")
		case errors.Is(err, economy.ErrInsufficientFunds):
			return utils.EH.CreateErrorEmbed(e, fmt.Sprintf(
				"The premium role costs **%s coins**, but you only have **%s**.",
				utils.FormatNumber(prices.RolePrice), utils.FormatNumber(user.Coins)))
		default:
			var delivery *economy.DeliveryFailure
			if errors.As(err, &delivery) {
				slog.Error("Failed to grant premium role",
					slog.String("type", "cmd"),
					slog.String("discord_id", userID.String()),
					slog.Any("error", err))
				return utils.EH.CreateErrorEmbed(e, "I couldn't assign the role, so you were not charged. Ask an admin to check my permissions.")
			}
			slog.Error("Role purchase failed",
				slog.String("type", "cmd"),
				slog.String("discord_id", userID.String()),
				slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "The purchase failed. Please try again later.")
		}

		if err := b.AuditLogRepository.Append(ctx, "role_purchased", userID.String(), map[string]any{
			"price": prices.RolePrice,
		}); err != nil {
			slog.Error("Failed to log role purchase",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
			"Premium role purchased for **%s coins**! 👑",
			utils.FormatNumber(prices.RolePrice)))
	}
}
