package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/codestube/bot/internal/model"
	"github.com/gofrs/uuid"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS todos (
	seq            BIGSERIAL,
	id             TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	user_id        TEXT NOT NULL,
	guild_id       TEXT,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	due            TEXT NOT NULL DEFAULT '',
	completed      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id, seq);
CREATE INDEX IF NOT EXISTS todos_user_id_guild_id_idx ON todos (user_id, guild_id, seq);
`

// Owner filter shared by all the ByOwner queries, $1 is the user id and $2 the guild id ('' means any guild).
const postgresOwnerFilter = `user_id = $1 AND ($2::text = '' OR guild_id = $2)`

const postgresColumns = `id, schema_version, user_id, COALESCE(guild_id, ''), name, description, due, completed, created_at, updated_at`

type pg struct {
	db *sql.DB
}

func postgresDB(url string) (*sql.DB, error) {
	if url == "" {
		return nil, errors.New("postgres url is not set")
	}

	db, err := sql.Open("postgres", url)
	return db, errors.Wrap(err, "could not get database connection")
}

// PostgresInit creates the todos table and its indexes.
func PostgresInit(url string) error {
	db, err := postgresDB(url)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(postgresSchema)
	return errors.Wrap(err, "could not create todos table")
}

// PostgresOpen returns a new Postgres database connection pool.
func PostgresOpen(url string, maxOpenConns int) (Client, error) {
	db, err := postgresDB(url)
	if err != nil {
		return nil, err
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns / 2)
	}

	return &pg{
		db: db,
	}, nil
}

// Ping checks that the server is reachable.
func (c *pg) Ping(ctx context.Context) error {
	return errors.Wrap(c.db.PingContext(ctx), "could not reach postgres database")
}

// Close the database.
func (c *pg) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *pg) IsNotFound(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// InsertTodo stores a new todo, its ID and timestamps are assigned by the database.
func (c *pg) InsertTodo(ctx context.Context, todo *model.Todo) error {
	t := time.Now().UTC()
	todo.SetID(uuid.Must(uuid.NewV4()).String())
	todo.SetCreatedAt(t)
	todo.SetUpdatedAt(t)
	todo.SchemaVersion = model.TodoSchemaVersion

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO todos (id, schema_version, user_id, guild_id, name, description, due, completed, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4::text, ''), $5, $6, $7, $8, $9, $10)`,
		todo.ID, todo.SchemaVersion, todo.UserID, todo.GuildID, todo.Name, todo.Description, todo.Due,
		todo.Completed, todo.CreatedAt, todo.UpdatedAt)
	return errors.Wrap(err, "could not save the todo")
}

// FindTodo returns the todo for the given id (UUID).
func (c *pg) FindTodo(ctx context.Context, id string) (*model.Todo, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+postgresColumns+` FROM todos WHERE id = $1`, id)

	todo, err := scanTodo(row)
	if err != nil {
		return nil, errors.Wrap(err, "could not find todo")
	}
	return todo, nil
}

// FindTodosByOwner returns the matching todos in insertion order.
// limit equals to 0 means all todos.
func (c *pg) FindTodosByOwner(ctx context.Context, userID, guildID string, limit int) ([]*model.Todo, error) {
	query := `SELECT ` + postgresColumns + ` FROM todos WHERE ` + postgresOwnerFilter + ` ORDER BY seq`
	args := []any{userID, guildID}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "could not find todos")
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, errors.Wrap(err, "could not scan todo")
		}
		todos = append(todos, todo)
	}
	return todos, errors.Wrap(rows.Err(), "could not iterate todos")
}

// DeleteTodoByOwner deletes the matching todo and returns the number of deleted records (0 or 1).
func (c *pg) DeleteTodoByOwner(ctx context.Context, id, userID, guildID string) (int, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM todos WHERE `+postgresOwnerFilter+` AND id = $3`, userID, guildID, id)
	if err != nil {
		return 0, errors.Wrap(err, "could not delete todo")
	}
	return affected(res)
}

// DeleteTodosByOwner deletes all the matching todos in one statement and returns how many were deleted.
func (c *pg) DeleteTodosByOwner(ctx context.Context, userID, guildID string) (int, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM todos WHERE `+postgresOwnerFilter, userID, guildID)
	if err != nil {
		return 0, errors.Wrap(err, "could not delete todos")
	}
	return affected(res)
}

// CompleteTodoByOwner flags the matching todo as completed and returns the number of updated records (0 or 1).
func (c *pg) CompleteTodoByOwner(ctx context.Context, id, userID, guildID string) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE todos SET completed = TRUE, updated_at = $4 WHERE `+postgresOwnerFilter+` AND id = $3`,
		userID, guildID, id, time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "could not complete todo")
	}
	return affected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (*model.Todo, error) {
	var todo model.Todo
	err := s.Scan(&todo.ID, &todo.SchemaVersion, &todo.UserID, &todo.GuildID, &todo.Name,
		&todo.Description, &todo.Due, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "could not get affected rows")
	}
	return int(n), nil
}
