package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/codestube/bot/internal/moderation"
	"github.com/codestube/bot/internal/router"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned for interactions the router does not handle.
var ErrUnsupported = errors.New("unsupported interaction")

// Event converts an interaction into a router event.
func Event(i *discordgo.Interaction) (router.Event, error) {
	req := requester(i)
	if req.UserID == "" {
		return nil, errors.New("interaction without user")
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		e := router.CommandInvoked{
			Requester: req,
			Command:   data.Name,
		}
		for _, opt := range data.Options {
			if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
				e.Subcommand = opt.Name
				break
			}
		}
		return e, nil
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		return router.FormSubmitted{
			Requester: req,
			FormID:    data.CustomID,
			Fields:    textInputs(data.Components, map[string]string{}),
		}, nil
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if data.ComponentType != discordgo.SelectMenuComponent {
			return nil, ErrUnsupported
		}
		return router.OptionSelected{
			Requester: req,
			MenuID:    data.CustomID,
			Values:    data.Values,
		}, nil
	default:
		return nil, ErrUnsupported
	}
}

func requester(i *discordgo.Interaction) router.Requester {
	req := router.Requester{GuildID: i.GuildID}
	switch {
	case i.Member != nil && i.Member.User != nil:
		req.UserID = i.Member.User.ID
	case i.User != nil:
		req.UserID = i.User.ID
	}
	return req
}

// textInputs collects the values of the text inputs found in the components.
// Decoded payloads hold pointers while hand built ones usually hold values.
func textInputs(components []discordgo.MessageComponent, fields map[string]string) map[string]string {
	for _, c := range components {
		switch c := c.(type) {
		case *discordgo.ActionsRow:
			textInputs(c.Components, fields)
		case discordgo.ActionsRow:
			textInputs(c.Components, fields)
		case *discordgo.TextInput:
			fields[c.CustomID] = c.Value
		case discordgo.TextInput:
			fields[c.CustomID] = c.Value
		}
	}
	return fields
}

// message converts a gateway message.
func message(m *discordgo.Message) moderation.Message {
	msg := moderation.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}
