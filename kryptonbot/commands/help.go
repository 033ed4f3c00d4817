package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/config"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/utils"
	"github.com/sahilm/fuzzy"
)

var Help = discord.SlashCommandCreate{
	Name:        "help",
	Description: "📖 List commands, or look one up by name",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "command",
			Description: "The command to look up",
			Required:    false,
		},
	},
}

func HelpHandler(b *kryptonbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if query, ok := e.SlashCommandInteractionData().OptString("command"); ok {
			return helpForCommand(e, query)
		}

		var description strings.Builder
		for _, cmd := range Commands {
			slash, ok := cmd.(discord.SlashCommandCreate)
			if !ok {
				continue
			}
			description.WriteString(fmt.Sprintf("`/%s` — %s\n", slash.Name, slash.Description))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "📖 Commands",
				Description: description.String(),
				Color:       config.InfoColor,
				Footer:      &discord.EmbedFooter{Text: config.FooterText},
			}},
		})
	}
}

func helpForCommand(e *handler.CommandEvent, query string) error {
	query = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(query)), "/")

	names := make([]string, 0, len(Commands))
	byName := make(map[string]discord.SlashCommandCreate, len(Commands))
	for _, cmd := range Commands {
		slash, ok := cmd.(discord.SlashCommandCreate)
		if !ok {
			continue
		}
		names = append(names, slash.Name)
		byName[slash.Name] = slash
	}

	if slash, ok := byName[query]; ok {
		return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("`/%s` — %s", slash.Name, slash.Description))
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("Unknown command `%s`.", query))
	}
	return utils.EH.CreateErrorEmbed(e, fmt.Sprintf(
		"Unknown command `%s`. Did you mean `/%s`?", query, matches[0].Str))
}
