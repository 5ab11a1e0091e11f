package database

import (
	"context"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/codestube/bot/internal/model"
	"github.com/codestube/bot/pkg/stormcodec"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

func stormDB(database, codecName string) (*storm.DB, error) {
	c, err := stormcodec.ByName(codecName)
	if err != nil {
		return nil, err
	}

	db, err := storm.Open(database, storm.Codec(c))
	return db, errors.Wrap(err, "could not get database connection")
}

// StormInit initializes Storm database.
func StormInit(database, codec string) error {
	db, err := stormDB(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Init(&model.Todo{})
	return errors.Wrap(err, "could not init todo index")
}

// StormReIndex reindex Storm database.
func StormReIndex(database, codec string) error {
	db, err := stormDB(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.ReIndex(&model.Todo{})
	return errors.Wrap(err, "could not ReIndex todos")
}

// StormOpen returns a new Storm database connection.
func StormOpen(database, codec string) (Client, error) {
	db, err := stormDB(database, codec)
	if err != nil {
		return nil, err
	}

	return &strm{
		db: db,
	}, nil
}

// Ping checks that the underlying bolt file is still open.
func (c *strm) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.db.Count(&model.Todo{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not reach storm database")
	}
	return nil
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is nil or a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// InsertTodo stores a new todo, its ID and timestamps are assigned by the database.
func (c *strm) InsertTodo(ctx context.Context, todo *model.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := time.Now().UTC()
	todo.SetID(uuid.Must(uuid.NewV4()).String())
	todo.SetCreatedAt(t)
	todo.SetUpdatedAt(t)
	todo.SchemaVersion = model.TodoSchemaVersion

	return errors.Wrap(c.db.Save(todo), "could not save the todo")
}

// FindTodo returns the todo for the given id (UUID).
func (c *strm) FindTodo(ctx context.Context, id string) (*model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var todo model.Todo
	if err := c.db.One("ID", id, &todo); err != nil {
		return nil, errors.Wrap(err, "could not find todo")
	}
	return &todo, nil
}

// FindTodosByOwner returns the matching todos in insertion order.
// limit equals to 0 means all todos.
func (c *strm) FindTodosByOwner(ctx context.Context, userID, guildID string, limit int) ([]*model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	todos := make([]*model.Todo, 0)
	stmt := c.db.Select(ownerMatchers(userID, guildID)...).OrderBy("CreatedAt")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	err := stmt.Find(&todos)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find todos")
	}
	return todos, nil
}

// DeleteTodoByOwner deletes the matching todo and returns the number of deleted records (0 or 1).
func (c *strm) DeleteTodoByOwner(ctx context.Context, id, userID, guildID string) (int, error) {
	return c.updateOne(ctx, id, userID, guildID, func(tx storm.Node, todo *model.Todo) error {
		return errors.Wrap(tx.DeleteStruct(todo), "could not delete todo")
	})
}

// CompleteTodoByOwner flags the matching todo as completed and returns the number of updated records (0 or 1).
func (c *strm) CompleteTodoByOwner(ctx context.Context, id, userID, guildID string) (int, error) {
	return c.updateOne(ctx, id, userID, guildID, func(tx storm.Node, todo *model.Todo) error {
		todo.Completed = true
		todo.SetUpdatedAt(time.Now().UTC())
		return errors.Wrap(tx.Save(todo), "could not complete todo")
	})
}

// DeleteTodosByOwner deletes all the matching todos in one transaction and returns how many were deleted.
func (c *strm) DeleteTodosByOwner(ctx context.Context, userID, guildID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tx, err := c.db.Begin(true)
	if err != nil {
		return 0, errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	matchers := ownerMatchers(userID, guildID)
	n, err := tx.Select(matchers...).Count(&model.Todo{})
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not count todos")
	}
	if n == 0 {
		return 0, nil
	}

	if err = tx.Select(matchers...).Delete(&model.Todo{}); err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, "could not delete todos")
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "could not commit todos deletion")
	}
	return n, nil
}

// updateOne loads the todo inside a writable transaction and applies fn only when the todo matches the owner.
func (c *strm) updateOne(ctx context.Context, id, userID, guildID string, fn func(storm.Node, *model.Todo) error) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tx, err := c.db.Begin(true)
	if err != nil {
		return 0, errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck

	var todo model.Todo
	err = tx.One("ID", id, &todo)
	if c.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "could not find todo")
	}

	if !todo.OwnedBy(userID, guildID) {
		return 0, nil
	}

	if err = fn(tx, &todo); err != nil {
		if c.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "could not commit transaction")
	}
	return 1, nil
}

func ownerMatchers(userID, guildID string) []q.Matcher {
	matchers := []q.Matcher{q.Eq("UserID", userID)}
	if guildID != "" {
		matchers = append(matchers, q.Eq("GuildID", guildID))
	}
	return matchers
}
