package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/codestube/bot/internal/router"
)

// Commands returns the application commands of the bot.
func Commands() []*discordgo.ApplicationCommand {
	sub := func(name, description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: description,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        router.CommandTodo,
			Description: "Manage your to-do list",
			Options: []*discordgo.ApplicationCommandOption{
				sub("add", "Add a new to-do item with name and due time"),
				sub("list", "List your to-do items"),
				sub(router.ActionDelete, "Delete a to-do item using a dropdown"),
				sub("clear", "Clear all your to-do items in this server"),
				sub(router.ActionComplete, "Mark a to-do item as finished using a dropdown"),
			},
		},
	}
}
