package service

import (
	"context"

	"github.com/codestube/bot/internal/events"
	"github.com/sirupsen/logrus"
)

// DefaultListLimit is the number of todos returned by List when no limit is given.
const DefaultListLimit = 10

// publish sends the event and only logs failures, the change is already committed.
func publish(ctx context.Context, publisher events.Publisher, log logrus.FieldLogger, e events.Event) {
	if err := publisher.Publish(ctx, e); err != nil {
		log.WithError(err).WithField("event", e.Type).Warn("could not publish todo event")
	}
}
