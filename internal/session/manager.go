package session

import (
	"context"
	"time"

	"github.com/codestube/bot/internal/todoerror"
	"github.com/pkg/errors"
)

// DefaultTTL is how long a menu token stays valid when no TTL is configured.
const DefaultTTL = 15 * time.Minute

// ErrNotFound is returned by a Store when the token is unknown or expired.
var ErrNotFound = errors.New("session: token not found")

type (
	// A Grant binds a menu option to the requester who opened the menu and to one todo.
	Grant struct {
		Action      string    `json:"action"`
		RequesterID string    `json:"requester_id"`
		GuildID     string    `json:"guild_id,omitempty"`
		ItemID      string    `json:"item_id"`
		ExpireAt    time.Time `json:"expire_at"`
	}

	// A Store keeps grants until their TTL elapses.
	Store interface {
		// Put saves the grant under the given token.
		Put(ctx context.Context, token string, g Grant, ttl time.Duration) error
		// Get returns the grant of the given token or ErrNotFound.
		Get(ctx context.Context, token string) (*Grant, error)
		// Delete removes the given token, removing an unknown token is not an error.
		Delete(ctx context.Context, token string) error
	}

	// A Manager issues and resolves menu tokens.
	Manager interface {
		// Issue stores the grant and returns its token.
		Issue(ctx context.Context, g Grant) (string, error)
		// Resolve returns the grant of the token if it was issued for the given action and requester.
		Resolve(ctx context.Context, token, action, requesterID string) (*Grant, error)
		// Revoke invalidates the token.
		Revoke(ctx context.Context, token string) error
	}

	manager struct {
		store Store
		ttl   time.Duration
	}
)

// NewManager returns a new manager.
func NewManager(store Store, ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &manager{
		store: store,
		ttl:   ttl,
	}
}

func (m *manager) Issue(ctx context.Context, g Grant) (string, error) {
	g.ExpireAt = time.Now().Add(m.ttl).UTC()

	token := SecureToken(TokenLength)
	if err := m.store.Put(ctx, token, g, m.ttl); err != nil {
		return "", todoerror.Unavailable(err, "could not save menu token")
	}
	return token, nil
}

func (m *manager) Resolve(ctx context.Context, token, action, requesterID string) (*Grant, error) {
	g, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil, expired()
		}
		return nil, todoerror.Unavailable(err, "could not read menu token")
	}

	if g.Action != action || g.ExpireAt.Before(time.Now()) {
		return nil, expired()
	}

	if !SecureCompare(g.RequesterID, requesterID) {
		return nil, todoerror.New(todoerror.KindForbidden, "This menu isn't for you.")
	}

	return g, nil
}

func (m *manager) Revoke(ctx context.Context, token string) error {
	err := m.store.Delete(ctx, token)
	return errors.Wrap(err, "could not revoke menu token")
}

func expired() error {
	return todoerror.New(todoerror.KindSessionExpired, "This menu has expired.")
}
