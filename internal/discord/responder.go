package discord

import (
	"context"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/codestube/bot/internal/router"
	"github.com/pkg/errors"
)

// interactionAPI is the part of *discordgo.Session used to answer interactions.
type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type responder struct {
	api       interactionAPI
	i         *discordgo.Interaction
	responded atomic.Bool
}

func newResponder(api interactionAPI, i *discordgo.Interaction) *responder {
	return &responder{api: api, i: i}
}

func (r *responder) Reply(ctx context.Context, reply router.Reply) error {
	data := replyData(reply)

	// An interaction accepts one response, anything after is a followup message.
	if r.responded.Load() {
		_, err := r.api.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
			Content:    data.Content,
			Components: data.Components,
			Flags:      data.Flags,
		}, discordgo.WithContext(ctx))
		return errors.Wrap(err, "could not send followup")
	}

	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (r *responder) ShowForm(ctx context.Context, f router.Form) error {
	rows := make([]discordgo.MessageComponent, 0, len(f.Fields))
	for _, field := range f.Fields {
		style := discordgo.TextInputShort
		if field.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  field.ID,
					Label:     field.Label,
					Style:     style,
					Required:  field.Required,
					MaxLength: field.MaxLength,
				},
			},
		})
	}

	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   f.ID,
			Title:      f.Title,
			Components: rows,
		},
	})
}

func (r *responder) Update(ctx context.Context, reply router.Reply) error {
	data := replyData(reply)
	data.Flags = 0

	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

func (r *responder) Responded() bool {
	return r.responded.Load()
}

func (r *responder) respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	if err := r.api.InteractionRespond(r.i, resp, discordgo.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "could not respond to interaction")
	}
	r.responded.Store(true)
	return nil
}

func replyData(reply router.Reply) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content: reply.Content,
		// Always set so that an update removes the menu of the message.
		Components: []discordgo.MessageComponent{},
	}
	if reply.Private {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	if reply.Menu != nil {
		options := make([]discordgo.SelectMenuOption, 0, len(reply.Menu.Options))
		for _, opt := range reply.Menu.Options {
			options = append(options, discordgo.SelectMenuOption{
				Label:       opt.Label,
				Value:       opt.Value,
				Description: opt.Description,
			})
		}

		data.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    reply.Menu.ID,
						Placeholder: reply.Menu.Placeholder,
						Options:     options,
					},
				},
			},
		}
	}

	return data
}
