package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var Info = discord.SlashCommandCreate{
	Name:        "info",
	Description: "ℹ️ Show bot and economy statistics",
}

func InfoHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		stats, err := b.Engine.Stats(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch statistics. Please try again later.")
		}

		boostLine := "Inactive"
		if state := b.Boost.Current(ctx); state.Active && state.EndsAt != nil {
			boostLine = fmt.Sprintf("**%gx** until <t:%d:R>", state.Multiplier, state.EndsAt.Unix())
		}

		embed := discord.NewEmbedBuilder().
			SetTitle("ℹ️ Krypton Executor").
			AddField("Registered Users", utils.FormatNumber(int64(stats.TotalUsers)), true).
			AddField("Coins in Circulation", utils.FormatNumber(stats.TotalCoins), true).
			AddField("Coin Boost", boostLine, true).
			AddField("Version", fmt.Sprintf("%s (%s)", b.Version, b.Commit), true).
			AddField("Library", "disgo "+disgo.Version, true).
			AddField("Runtime", runtime.Version(), true).
			SetColor(config.InfoColor).
			SetFooter(config.FooterText, "")

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}
