package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/codestube/bot/internal/moderation"
	"github.com/pkg/errors"
)

// messageAPI is the part of *discordgo.Session used by the message commands.
type messageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// channel implements moderation.Channel.
type channel struct {
	api messageAPI
}

func (c channel) Messages(ctx context.Context, channelID, beforeID string, limit int) ([]moderation.Message, error) {
	msgs, err := c.api.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "could not list channel messages")
	}

	page := make([]moderation.Message, 0, len(msgs))
	for _, m := range msgs {
		page = append(page, message(m))
	}
	return page, nil
}

func (c channel) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := c.api.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	return errors.Wrap(err, "could not delete message")
}

func (c channel) Send(ctx context.Context, channelID, content string) (moderation.Message, error) {
	m, err := c.api.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return moderation.Message{}, errors.Wrap(err, "could not send message")
	}
	return message(m), nil
}
