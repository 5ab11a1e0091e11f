package moderation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultNoticeDelay is how long the purge notice stays in the channel.
	DefaultNoticeDelay = 1500 * time.Millisecond
	// PurgeMax is the largest amount accepted by /purge.
	PurgeMax = 500
	// PurgeScanMax bounds the number of messages read when only the invoker's messages are purged.
	PurgeScanMax = 1000

	pageSize = 100

	prefixPurge = "/purge "
	prefixSay   = "say "
	cmdVuln     = "vulncheck"
)

type (
	// A Message is a channel message as seen by the handler.
	Message struct {
		ID         string
		ChannelID  string
		GuildID    string
		AuthorID   string
		AuthorName string
		AuthorBot  bool
		Content    string
	}

	// A Channel gives access to the messages of the channels the bot can see.
	Channel interface {
		// Messages returns at most limit messages posted before the given message, newest first.
		Messages(ctx context.Context, channelID, beforeID string, limit int) ([]Message, error)
		DeleteMessage(ctx context.Context, channelID, messageID string) error
		Send(ctx context.Context, channelID, content string) (Message, error)
	}

	// Self identifies the bot account.
	Self struct {
		ID          string
		DisplayName string
	}

	// A Config holds the settings of the message commands.
	Config struct {
		OwnerID     string
		OwnerName   string
		NoticeDelay time.Duration
	}

	// A Handler runs the message commands: /purge, say and vulncheck.
	Handler struct {
		cfg Config
		log logrus.FieldLogger
	}
)

// New returns a new Handler.
func New(cfg Config, log logrus.FieldLogger) *Handler {
	if cfg.NoticeDelay <= 0 {
		cfg.NoticeDelay = DefaultNoticeDelay
	}
	return &Handler{
		cfg: cfg,
		log: log,
	}
}

// Handle runs the command carried by the message, if any.
func (h *Handler) Handle(ctx context.Context, ch Channel, self Self, m Message) {
	if m.Content == cmdVuln {
		h.vulncheck(ctx, ch, self, m)
		return
	}

	if m.GuildID == "" || m.AuthorBot {
		return
	}

	content := strings.ToLower(m.Content)
	log := h.log.WithFields(logrus.Fields{
		"channel_id": m.ChannelID,
		"user_id":    m.AuthorID,
	})

	switch {
	case strings.HasPrefix(content, prefixPurge):
		if err := h.purge(ctx, ch, m); err != nil {
			log.WithError(err).Error("purge failed")
			h.send(ctx, ch, m.ChannelID, "Purge failed (check my permissions/intents).")
		}
	case strings.HasPrefix(content, prefixSay):
		h.say(ctx, ch, m)
	}
}

// parsePurge reads `/purge <amount> [mine]`.
func parsePurge(content string) (n int, mine bool, ok bool) {
	args := strings.Fields(content[len(prefixPurge):])
	if len(args) == 0 || len(args) > 2 {
		return 0, false, false
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 || n > PurgeMax {
		return 0, false, false
	}

	if len(args) == 2 {
		if !strings.EqualFold(args[1], "mine") {
			return 0, false, false
		}
		mine = true
	}
	return n, mine, true
}

func (h *Handler) purge(ctx context.Context, ch Channel, m Message) error {
	n, mine, ok := parsePurge(m.Content)
	if !ok {
		h.send(ctx, ch, m.ChannelID, fmt.Sprintf("Usage: `/purge <amount> [mine]` (amount from 1 to %d)", PurgeMax))
		return nil
	}

	var targets []string
	before := m.ID
	scanned := 0
	for len(targets) < n && scanned < PurgeScanMax {
		page, err := ch.Messages(ctx, m.ChannelID, before, pageSize)
		if err != nil {
			return errors.Wrap(err, "could not fetch messages")
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			scanned++
			if mine && msg.AuthorID != m.AuthorID {
				continue
			}
			targets = append(targets, msg.ID)
			if len(targets) == n {
				break
			}
		}
		before = page[len(page)-1].ID
	}

	deleted := 0
	for _, id := range targets {
		if err := ch.DeleteMessage(ctx, m.ChannelID, id); err != nil {
			h.log.WithError(err).WithField("message_id", id).Debug("could not delete message")
			continue
		}
		deleted++
	}

	if err := ch.DeleteMessage(ctx, m.ChannelID, m.ID); err != nil {
		h.log.WithError(err).Debug("could not delete purge command")
	}

	notice, err := ch.Send(ctx, m.ChannelID, fmt.Sprintf("%d messages purged.", deleted))
	if err != nil {
		return errors.Wrap(err, "could not send purge notice")
	}

	time.AfterFunc(h.cfg.NoticeDelay, func() {
		if err := ch.DeleteMessage(context.Background(), notice.ChannelID, notice.ID); err != nil {
			h.log.WithError(err).Debug("could not delete purge notice")
		}
	})
	return nil
}

func (h *Handler) say(ctx context.Context, ch Channel, m Message) {
	text := strings.TrimSpace(m.Content[len(prefixSay):])

	if err := ch.DeleteMessage(ctx, m.ChannelID, m.ID); err != nil {
		h.log.WithError(err).Debug("could not delete say command")
	}
	if text == "" {
		return
	}
	h.send(ctx, ch, m.ChannelID, text)
}

func (h *Handler) vulncheck(ctx context.Context, ch Channel, self Self, m Message) {
	var reply string
	switch {
	case h.cfg.OwnerID != "" && m.AuthorID == h.cfg.OwnerID:
		reply = fmt.Sprintf("hai %s :>", h.cfg.OwnerName)
	case h.cfg.OwnerName != "" && m.AuthorName == h.cfg.OwnerName:
		reply = fmt.Sprintf("hai %s, wait how are you them!? :o", h.cfg.OwnerName)
	case m.AuthorID == self.ID:
		reply = fmt.Sprintf("hai im %s! :D", self.DisplayName)
	default:
		reply = fmt.Sprintf("you are not %s! :p", h.ownerName())
	}
	h.send(ctx, ch, m.ChannelID, reply)
}

func (h *Handler) ownerName() string {
	if h.cfg.OwnerName == "" {
		return "my owner"
	}
	return h.cfg.OwnerName
}

func (h *Handler) send(ctx context.Context, ch Channel, channelID, content string) {
	if _, err := ch.Send(ctx, channelID, content); err != nil {
		h.log.WithError(err).WithField("channel_id", channelID).Error("could not send message")
	}
}
