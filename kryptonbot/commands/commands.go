package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/commands/admin"
)

var Commands = []discord.ApplicationCommandCreate{}

func init() {
	Commands = append(Commands,
		Coins,
		Daily,
		Top,
		Profile,
		Shop,
		BuyKey,
		BuyRole,
		Key,
		BoostStatus,
		Info,
		Help,
	)
	Commands = append(Commands, admin.Commands...)
}
