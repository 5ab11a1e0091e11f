package moderation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/codestube/bot/internal/moderation"
	"github.com/pkg/errors"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channel is an in-memory channel, messages are stored oldest first.
type channel struct {
	sync.Mutex
	messages []moderation.Message
	sent     []string
	deleted  []string
	seq      int
	fetchErr error
}

func (c *channel) post(author, content string) moderation.Message {
	c.Lock()
	defer c.Unlock()
	c.seq++
	m := moderation.Message{
		ID:        fmt.Sprintf("%04d", c.seq),
		ChannelID: "C",
		GuildID:   "G",
		AuthorID:  author,
		Content:   content,
	}
	c.messages = append(c.messages, m)
	return m
}

func (c *channel) Messages(_ context.Context, _, beforeID string, limit int) ([]moderation.Message, error) {
	c.Lock()
	defer c.Unlock()
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}

	var page []moderation.Message
	for i := len(c.messages) - 1; i >= 0 && len(page) < limit; i-- {
		if c.messages[i].ID < beforeID {
			page = append(page, c.messages[i])
		}
	}
	return page, nil
}

func (c *channel) DeleteMessage(_ context.Context, _, messageID string) error {
	c.Lock()
	defer c.Unlock()
	for i, m := range c.messages {
		if m.ID == messageID {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			c.deleted = append(c.deleted, messageID)
			return nil
		}
	}
	return errors.New("unknown message")
}

func (c *channel) Send(_ context.Context, channelID, content string) (moderation.Message, error) {
	c.Lock()
	c.sent = append(c.sent, content)
	c.Unlock()
	return c.post("bot", content), nil
}

func (c *channel) remaining() []string {
	c.Lock()
	defer c.Unlock()
	var contents []string
	for _, m := range c.messages {
		contents = append(contents, m.Content)
	}
	return contents
}

var self = moderation.Self{ID: "bot", DisplayName: "todobot"}

func handler(delay time.Duration) *moderation.Handler {
	log, _ := logtest.NewNullLogger()
	return moderation.New(moderation.Config{OwnerID: "owner", OwnerName: "youstube", NoticeDelay: delay}, log)
}

func TestPurge(t *testing.T) {
	ch := &channel{}
	for i := 0; i < 5; i++ {
		ch.post("alice", fmt.Sprintf("msg %d", i))
	}
	cmd := ch.post("alice", "/purge 3")

	handler(10*time.Millisecond).Handle(context.Background(), ch, self, cmd)

	assert.Contains(t, ch.sent, "3 messages purged.")
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"msg 0", "msg 1"}, ch.remaining())
	}, time.Second, 5*time.Millisecond, "notice and command are deleted")
}

func TestPurgeAcrossPages(t *testing.T) {
	ch := &channel{}
	for i := 0; i < 250; i++ {
		ch.post("alice", "spam")
	}
	cmd := ch.post("alice", "/PURGE 220")

	handler(time.Millisecond).Handle(context.Background(), ch, self, cmd)

	assert.Contains(t, ch.sent, "220 messages purged.")
	assert.Eventually(t, func() bool { return len(ch.remaining()) == 30 }, time.Second, 5*time.Millisecond)
}

func TestPurgeMine(t *testing.T) {
	ch := &channel{}
	ch.post("alice", "a1")
	ch.post("bob", "b1")
	ch.post("alice", "a2")
	ch.post("bob", "b2")
	cmd := ch.post("alice", "/purge 5 mine")

	handler(time.Millisecond).Handle(context.Background(), ch, self, cmd)

	assert.Contains(t, ch.sent, "2 messages purged.")
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"b1", "b2"}, ch.remaining())
	}, time.Second, 5*time.Millisecond)
}

func TestPurgeUsage(t *testing.T) {
	for _, content := range []string{"/purge abc", "/purge 0", "/purge -2", "/purge 3 theirs", "/purge 100000"} {
		ch := &channel{}
		ch.post("alice", "keep")
		cmd := ch.post("alice", content)

		handler(time.Millisecond).Handle(context.Background(), ch, self, cmd)

		require.Len(t, ch.sent, 1, content)
		assert.Contains(t, ch.sent[0], "Usage:", content)
		assert.Empty(t, ch.deleted, content)
	}
}

func TestPurgeFailure(t *testing.T) {
	ch := &channel{fetchErr: errors.New("missing access")}
	cmd := ch.post("alice", "/purge 2")

	handler(time.Millisecond).Handle(context.Background(), ch, self, cmd)

	assert.Equal(t, []string{"Purge failed (check my permissions/intents)."}, ch.sent)
}

func TestPurgeIgnoresBotsAndDirectMessages(t *testing.T) {
	ch := &channel{}
	ch.post("alice", "keep")

	cmd := ch.post("robot", "/purge 1")
	cmd.AuthorBot = true
	handler(time.Millisecond).Handle(context.Background(), ch, self, cmd)

	dm := ch.post("alice", "/purge 1")
	dm.GuildID = ""
	handler(time.Millisecond).Handle(context.Background(), ch, self, dm)

	assert.Empty(t, ch.sent)
	assert.Empty(t, ch.deleted)
}

func TestSay(t *testing.T) {
	ch := &channel{}
	cmd := ch.post("alice", "say   hello there ")

	handler(0).Handle(context.Background(), ch, self, cmd)

	assert.Equal(t, []string{"hello there"}, ch.sent)
	assert.Equal(t, []string{cmd.ID}, ch.deleted)
	assert.Equal(t, []string{"hello there"}, ch.remaining())
}

func TestVulncheck(t *testing.T) {
	cases := []struct {
		id     string
		name   string
		expect string
	}{
		{"owner", "whoever", "hai youstube :>"},
		{"impostor", "youstube", "hai youstube, wait how are you them!? :o"},
		{"bot", "todobot", "hai im todobot! :D"},
		{"alice", "alice", "you are not youstube! :p"},
	}

	for _, c := range cases {
		ch := &channel{}
		m := ch.post(c.id, "vulncheck")
		m.AuthorName = c.name
		m.GuildID = ""

		handler(0).Handle(context.Background(), ch, self, m)
		assert.Equal(t, []string{c.expect}, ch.sent)
	}
}

func TestVulncheckIsCaseSensitive(t *testing.T) {
	for _, content := range []string{"VULNCHECK", "Vulncheck", " vulncheck"} {
		ch := &channel{}
		m := ch.post("alice", content)

		handler(0).Handle(context.Background(), ch, self, m)
		assert.Empty(t, ch.sent, content)

		m.GuildID = ""
		handler(0).Handle(context.Background(), ch, self, m)
		assert.Empty(t, ch.sent, content)
	}
}
