package admin

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Restart = discord.SlashCommandCreate{
	Name:        "restart",
	Description: "🔄 Restart the bot process",
}

// RestartHandler exits cleanly after acknowledging; the process
// supervisor brings the bot back up.
func RestartHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Auth.Require(ctx, e.User().ID, "restart", auth.OwnerOnly, nil); err != nil {
			return respondDenied(e, err)
		}

		if err := b.AuditLogRepository.Append(ctx, "restart", e.User().ID.String(), nil); err != nil {
			slog.Error("Failed to log restart",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		if err := utils.EH.CreateSuccessEmbed(e, "Restarting... see you in a moment. 🔄"); err != nil {
			return err
		}

		go func() {
			time.Sleep(2 * time.Second)
			slog.Info("Restart requested, shutting down",
				slog.String("actor_id", e.User().ID.String()))
			b.Boost.Stop()
			b.Client.Close(context.Background())
			if b.DB != nil {
				b.DB.Close()
			}
			os.Exit(0)
		}()
		return nil
	}
}
