package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// commandAPI is the part of *discordgo.Session used to register commands.
type commandAPI interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Register overwrites the application commands of each given guild.
// An empty list of guilds registers the commands globally.
// Registration goes on after a failure and the first error is returned.
func Register(ctx context.Context, api commandAPI, appID string, guildIDs []string, log logrus.FieldLogger) error {
	if len(guildIDs) == 0 {
		guildIDs = []string{""}
	}

	var first error
	for _, guildID := range guildIDs {
		_, err := api.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
		if err != nil {
			err = errors.Wrapf(err, "could not register commands in guild %q", guildID)
			log.WithError(err).Error("command registration failed")
			if first == nil {
				first = err
			}
			continue
		}

		if guildID == "" {
			log.Info("Registered /todo globally")
		} else {
			log.Infof("Registered /todo in guild %s", guildID)
		}
	}
	return first
}
