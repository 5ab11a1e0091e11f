package session

import (
	"context"
	"sync"
	"time"
)

type memory struct {
	sync.Mutex
	grants map[string]Grant
}

// NewMemoryStore returns a Store kept in the process memory.
// Grants are lost on restart, which only invalidates the menus that were open.
func NewMemoryStore() Store {
	return &memory{
		grants: make(map[string]Grant),
	}
}

func (s *memory) Put(_ context.Context, token string, g Grant, _ time.Duration) error {
	s.Lock()
	defer s.Unlock()

	now := time.Now()
	for t, grant := range s.grants {
		if grant.ExpireAt.Before(now) {
			delete(s.grants, t)
		}
	}

	s.grants[token] = g
	return nil
}

func (s *memory) Get(_ context.Context, token string) (*Grant, error) {
	s.Lock()
	defer s.Unlock()

	g, ok := s.grants[token]
	if !ok || g.ExpireAt.Before(time.Now()) {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *memory) Delete(_ context.Context, token string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.grants, token)
	return nil
}
