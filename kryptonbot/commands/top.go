package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

// topLimit caps how deep the leaderboard goes; nobody pages past this.
const topLimit = 100

var Top = discord.SlashCommandCreate{
	Name:        "top",
	Description: "🏆 Show the coin leaderboard",
}

func TopHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		users, err := b.UserRepository.GetTopUsers(ctx, topLimit)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch the leaderboard. Please try again later.")
		}
		if len(users) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nobody has earned any coins yet.")
		}

		totalPages := int(math.Ceil(float64(len(users)) / float64(config.UsersPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.UsersPerPage
				endIdx := min(startIdx+config.UsersPerPage, len(users))
				pageUsers := users[startIdx:endIdx]

				var description strings.Builder
				for i, user := range pageUsers {
					rank := startIdx + i + 1
					medal := fmt.Sprintf("`#%d`", rank)
					switch rank {
					case 1:
						medal = "🥇"
					case 2:
						medal = "🥈"
					case 3:
						medal = "🥉"
					}
					description.WriteString(fmt.Sprintf("%s **%s** — %s coins\n",
						medal, user.Username, utils.FormatNumber(user.Coins)))
				}

				embed.
					SetTitle("🏆 Coin Leaderboard").
					SetDescription(description.String()).
					SetColor(config.InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %s", page+1, totalPages, config.FooterText), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
