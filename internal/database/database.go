package database

import (
	"context"

	"github.com/codestube/bot/internal/model"
)

type (
	// A Client can interacts with the todo collection.
	Client interface {
		// Ping checks that the collection is reachable.
		Ping(ctx context.Context) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool

		TodoInteraction
	}

	// A TodoInteraction defines all the methods used to interact with todo records.
	//
	// The ByOwner methods only match records of the given user id and, when guildID is not empty,
	// of the given guild id. A record that does not match is reported the same way as a missing one.
	TodoInteraction interface {
		// InsertTodo stores a new todo, its ID and timestamps are assigned by the database.
		InsertTodo(ctx context.Context, todo *model.Todo) error
		// FindTodo returns the todo for the given id (UUID).
		FindTodo(ctx context.Context, id string) (*model.Todo, error)
		// FindTodosByOwner returns the matching todos in insertion order.
		// limit equals to 0 means all todos.
		FindTodosByOwner(ctx context.Context, userID, guildID string, limit int) ([]*model.Todo, error)
		// DeleteTodoByOwner deletes the matching todo and returns the number of deleted records (0 or 1).
		DeleteTodoByOwner(ctx context.Context, id, userID, guildID string) (int, error)
		// DeleteTodosByOwner deletes all the matching todos in one transaction and returns how many were deleted.
		DeleteTodosByOwner(ctx context.Context, userID, guildID string) (int, error)
		// CompleteTodoByOwner flags the matching todo as completed and returns the number of updated records (0 or 1).
		CompleteTodoByOwner(ctx context.Context, id, userID, guildID string) (int, error)
	}
)

// Drivers supported by Open.
const (
	DriverStorm    = "storm"
	DriverPostgres = "postgres"
)
