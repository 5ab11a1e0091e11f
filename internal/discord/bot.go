package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/codestube/bot/internal/moderation"
	"github.com/codestube/bot/internal/router"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Intents are the gateway intents required by the bot.
const Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

// DefaultHandlerTimeout bounds the handling of one event.
const DefaultHandlerTimeout = 10 * time.Second

const (
	statusStarting = "Starting up, registering commands..."
	statusReady    = "Ready! Use `/todo` to manage your to-do list."
)

type (
	// A Config holds the settings of the gateway connection.
	Config struct {
		Token           string
		StatusChannelID string
		HandlerTimeout  time.Duration
	}

	// A Bot connects the router and the message commands to the Discord gateway.
	Bot struct {
		cfg        Config
		session    *discordgo.Session
		router     *router.Router
		moderation *moderation.Handler
		log        logrus.FieldLogger
	}
)

// NewSession returns an unopened session authenticated with the given bot token.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("discord token is not set")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create discord session")
	}
	s.Identify.Intents = Intents
	return s, nil
}

// New returns a new Bot.
func New(cfg Config, r *router.Router, m *moderation.Handler, log logrus.FieldLogger) (*Bot, error) {
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = DefaultHandlerTimeout
	}

	s, err := NewSession(cfg.Token)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		cfg:        cfg,
		session:    s,
		router:     r,
		moderation: m,
		log:        log,
	}

	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	s.AddHandler(b.onMessage)
	return b, nil
}

// Run connects to the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return errors.Wrap(err, "could not open gateway connection")
	}
	b.log.Info("connected to discord gateway")

	<-ctx.Done()

	b.log.Info("closing discord gateway connection")
	return errors.Wrap(b.session.Close(), "could not close gateway connection")
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Infof("Logged in as %s", r.User.String())

	ctx := context.Background()

	var status *discordgo.Message
	if b.cfg.StatusChannelID != "" {
		var err error
		status, err = s.ChannelMessageSend(b.cfg.StatusChannelID, statusStarting, discordgo.WithContext(ctx))
		if err != nil {
			b.log.WithError(err).Warn("could not post status message")
		}
	}

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}

	guildIDs := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}
	if err := Register(ctx, s, appID, guildIDs, b.log); err != nil {
		b.log.WithError(err).Error("could not register commands")
	}

	if status != nil {
		if _, err := s.ChannelMessageEdit(status.ChannelID, status.ID, statusReady, discordgo.WithContext(ctx)); err != nil {
			b.log.WithError(err).Warn("could not edit status message")
		}
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	e, err := Event(i.Interaction)
	if err != nil {
		if errors.Cause(err) != ErrUnsupported {
			b.log.WithError(err).Warn("could not read interaction")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.HandlerTimeout)
	defer cancel()

	b.router.Dispatch(ctx, e, newResponder(s, i.Interaction))
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.moderation == nil || m.Author == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.HandlerTimeout)
	defer cancel()

	b.moderation.Handle(ctx, channel{api: s}, self(s, m.GuildID), message(m.Message))
}

// self returns the bot identity, using its nickname in the guild when it has one.
func self(s *discordgo.Session, guildID string) moderation.Self {
	u := s.State.User
	if u == nil {
		return moderation.Self{}
	}

	id := moderation.Self{ID: u.ID, DisplayName: u.Username}
	if u.GlobalName != "" {
		id.DisplayName = u.GlobalName
	}
	if guildID != "" {
		if member, err := s.State.Member(guildID, u.ID); err == nil && member.Nick != "" {
			id.DisplayName = member.Nick
		}
	}
	return id
}
