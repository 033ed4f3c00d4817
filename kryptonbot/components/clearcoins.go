package components

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

// ClearCoinsComponentHandler finishes the /clearcoins confirmation flow.
// Authorization is re-checked here; whoever could see the prompt is not
// necessarily the owner.
func ClearCoinsComponentHandler(b *kryptonbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		customID := e.Data.CustomID()
		parts := strings.Split(customID, "/")
		if len(parts) != 4 {
			slog.Error("Invalid clearcoins custom ID",
				slog.String("custom_id", customID))
			return nil
		}
		action := parts[2]
		deadline, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			slog.Error("Invalid clearcoins deadline",
				slog.String("custom_id", customID),
				slog.Any("error", err))
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Auth.Require(ctx, e.User().ID, "clearcoins", auth.OwnerOnly, nil); err != nil {
			return utils.EH.CreateEphemeralError(e, "Only the owner can respond to this prompt.")
		}

		if action == "cancel" || time.Now().Unix() > deadline {
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds: &[]discord.Embed{{
					Description: "Balance reset cancelled. No changes were made.",
					Color:       config.InfoColor,
				}},
				Components: &[]discord.ContainerComponent{},
			})
		}

		affected, err := b.UserRepository.ResetAllCoins(ctx)
		if err != nil {
			slog.Error("Failed to reset all balances",
				slog.String("type", "db"),
				slog.Any("error", err))
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds: &[]discord.Embed{{
					Description: "❌ Failed to reset balances. Please try again later.",
					Color:       config.ErrorColor,
				}},
				Components: &[]discord.ContainerComponent{},
			})
		}

		if err := b.AuditLogRepository.Append(ctx, "clear_all_coins", e.User().ID.String(), map[string]any{
			"affected": affected,
		}); err != nil {
			slog.Error("Failed to log balance reset",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		return e.UpdateMessage(discord.MessageUpdate{
			Embeds: &[]discord.Embed{{
				Description: fmt.Sprintf("✅ Reset **%d** balances to zero.", affected),
				Color:       config.SuccessColor,
			}},
			Components: &[]discord.ContainerComponent{},
		})
	}
}
