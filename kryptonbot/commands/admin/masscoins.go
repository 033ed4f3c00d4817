package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
)

var MassAddCoins = discord.SlashCommandCreate{
	Name:        "massaddcoins",
	Description: "💰 Add coins to every known user and every server member",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Number of coins to add to each user",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

var MassRemoveCoins = discord.SlashCommandCreate{
	Name:        "massremovecoins",
	Description: "💸 Remove coins from every known user and every server member",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "Number of coins to remove from each user",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

// Mass operations share the admin tier with the single-target coin
// commands; only clearcoins, trust, and restart stay owner-gated.
const massCoinsLevel = auth.AdminShared

func MassAddCoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return massCoinsHandler(b, "mass_add_coins", 1)
}

func MassRemoveCoinsHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return massCoinsHandler(b, "mass_remove_coins", -1)
}

func massCoinsHandler(b *kryptonbot.Bot, operation string, sign int64) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		authCtx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		amount := int64(e.SlashCommandInteractionData().Int("amount"))

		if err := b.Auth.Require(authCtx, e.User().ID, operation, massCoinsLevel, map[string]any{
			"amount": amount,
		}); err != nil {
			return respondDenied(e, err)
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.BulkOpTimeout)
		defer cancel()

		ids, err := collectTargets(ctx, b, e.GuildID())
		if err != nil {
			slog.Error("Failed to collect mass operation targets",
				slog.String("type", "db"),
				slog.String("operation", operation),
				slog.Any("error", err))
			return utils.EH.UpdateErrorEmbed(e, "Failed to collect the target users. Please try again later.")
		}

		affected := b.Engine.TransferBulk(ctx, ids, sign*amount)

		if err := b.AuditLogRepository.Append(ctx, operation, e.User().ID.String(), map[string]any{
			"amount":   amount,
			"targets":  len(ids),
			"affected": affected,
		}); err != nil {
			slog.Error("Failed to log mass coin operation",
				slog.String("type", "db"),
				slog.Any("error", err))
		}

		verb := "Added"
		preposition := "to"
		if sign < 0 {
			verb = "Removed"
			preposition = "from"
		}
		return utils.EH.UpdateSuccessEmbed(e, fmt.Sprintf(
			"%s **%s coins** %s **%d** users.",
			verb, utils.FormatNumber(amount), preposition, affected))
	}
}

// collectTargets unions everyone the ledger knows with every human member
// of the guild the command ran in, so members who never spoke still
// receive mass grants.
func collectTargets(ctx context.Context, b *kryptonbot.Bot, guildID *snowflake.ID) ([]string, error) {
	ids, err := b.UserRepository.GetAllIDs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	if guildID != nil {
		var after snowflake.ID
		for {
			members, err := b.Client.Rest().GetMembers(*guildID, 1000, after)
			if err != nil {
				return nil, err
			}
			for _, member := range members {
				if member.User.Bot || member.User.System {
					continue
				}
				id := member.User.ID.String()
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
			if len(members) < 1000 {
				break
			}
			after = members[len(members)-1].User.ID
		}
	}

	return ids, nil
}
