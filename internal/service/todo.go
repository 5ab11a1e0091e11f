package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codestube/bot/internal/database"
	"github.com/codestube/bot/internal/events"
	"github.com/codestube/bot/internal/model"
	"github.com/codestube/bot/internal/todoerror"
	"github.com/sirupsen/logrus"
)

type (
	// A TodoStore owns all reads and writes of the todo collection.
	//
	// An empty guildID means the command came from outside of any guild: List and ClearAll then span all
	// the partitions of the user, DeleteByID and Complete do not check the partition.
	// Missing todos, todos of another user and todos of another guild are all reported as a 0 count.
	TodoStore interface {
		// Create validates and inserts a new todo and returns its id.
		Create(ctx context.Context, userID, guildID, name, description, due string) (string, error)
		// List returns at most limit todos in insertion order (DefaultListLimit when limit <= 0).
		List(ctx context.Context, userID, guildID string, limit int) ([]*model.Todo, error)
		// DeleteByID deletes one todo and returns 1, or returns 0 when nothing matched.
		DeleteByID(ctx context.Context, userID, guildID, id string) (int, error)
		// ClearAll deletes every matching todo at once and returns how many were deleted.
		ClearAll(ctx context.Context, userID, guildID string) (int, error)
		// Complete flags one todo as completed and returns 1, or returns 0 when nothing matched.
		Complete(ctx context.Context, userID, guildID, id string) (int, error)
	}

	// A TodoInput holds the user provided fields of a new todo.
	TodoInput struct {
		Name        string
		Description string
		Due         string
	}

	todoStore struct {
		db        database.Client
		publisher events.Publisher
		log       logrus.FieldLogger
	}
)

// NewTodoStore returns a TodoStore backed by the given database client.
func NewTodoStore(db database.Client, publisher events.Publisher, log logrus.FieldLogger) TodoStore {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &todoStore{
		db:        db,
		publisher: publisher,
		log:       log,
	}
}

// Normalize trims the fields.
func (in TodoInput) Normalize() TodoInput {
	return TodoInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Due:         strings.TrimSpace(in.Due),
	}
}

// Validate checks presence and length bounds of the fields.
func (in TodoInput) Validate() error {
	if in.Name == "" {
		return todoerror.Validation("name", "Task name is required.")
	}

	bounds := []struct {
		field string
		label string
		value string
		max   int
	}{
		{"name", "Task name", in.Name, model.TodoNameMaxLength},
		{"description", "Description", in.Description, model.TodoDescriptionMaxLength},
		{"due", "Due time", in.Due, model.TodoDueMaxLength},
	}
	for _, b := range bounds {
		if utf8.RuneCountInString(b.value) > b.max {
			return todoerror.Validation(b.field, fmt.Sprintf("%s must be at most %d characters.", b.label, b.max))
		}
	}

	return nil
}

func (s *todoStore) Create(ctx context.Context, userID, guildID, name, description, due string) (string, error) {
	if userID == "" {
		return "", todoerror.Validation("user", "Missing requester.")
	}

	in := TodoInput{Name: name, Description: description, Due: due}.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}

	todo := model.NewTodo(userID, guildID)
	todo.Name = in.Name
	todo.Description = in.Description
	todo.Due = in.Due

	if err := s.db.InsertTodo(ctx, todo); err != nil {
		return "", todoerror.Unavailable(err, "could not create todo")
	}

	s.log.WithFields(logrus.Fields{
		"todo_id":  todo.ID,
		"user_id":  userID,
		"guild_id": guildID,
	}).Debug("todo created")

	publish(ctx, s.publisher, s.log, events.Event{
		Type:    events.TypeCreated,
		TodoID:  todo.ID,
		UserID:  userID,
		GuildID: guildID,
		At:      todo.CreatedAt,
	})

	return todo.ID, nil
}

func (s *todoStore) List(ctx context.Context, userID, guildID string, limit int) ([]*model.Todo, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	todos, err := s.db.FindTodosByOwner(ctx, userID, guildID, limit)
	if err != nil {
		return nil, todoerror.Unavailable(err, "could not list todos")
	}
	return todos, nil
}

func (s *todoStore) DeleteByID(ctx context.Context, userID, guildID, id string) (int, error) {
	if id == "" {
		return 0, nil
	}

	n, err := s.db.DeleteTodoByOwner(ctx, id, userID, guildID)
	if err != nil {
		return 0, todoerror.Unavailable(err, "could not delete todo")
	}

	if n > 0 {
		publish(ctx, s.publisher, s.log, events.Event{
			Type:    events.TypeDeleted,
			TodoID:  id,
			UserID:  userID,
			GuildID: guildID,
		})
	}
	return n, nil
}

func (s *todoStore) ClearAll(ctx context.Context, userID, guildID string) (int, error) {
	n, err := s.db.DeleteTodosByOwner(ctx, userID, guildID)
	if err != nil {
		return 0, todoerror.Unavailable(err, "could not clear todos")
	}

	if n > 0 {
		s.log.WithFields(logrus.Fields{
			"user_id":  userID,
			"guild_id": guildID,
			"count":    n,
		}).Debug("todos cleared")

		publish(ctx, s.publisher, s.log, events.Event{
			Type:    events.TypeCleared,
			UserID:  userID,
			GuildID: guildID,
			Count:   n,
		})
	}
	return n, nil
}

func (s *todoStore) Complete(ctx context.Context, userID, guildID, id string) (int, error) {
	if id == "" {
		return 0, nil
	}

	n, err := s.db.CompleteTodoByOwner(ctx, id, userID, guildID)
	if err != nil {
		return 0, todoerror.Unavailable(err, "could not complete todo")
	}

	if n > 0 {
		publish(ctx, s.publisher, s.log, events.Event{
			Type:    events.TypeCompleted,
			TodoID:  id,
			UserID:  userID,
			GuildID: guildID,
		})
	}
	return n, nil
}
