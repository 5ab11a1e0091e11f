package stormsql_test

import (
	"testing"
	"time"

	"github.com/codestube/bot/pkg/stormsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type todo struct {
	UserID    string
	GuildID   string
	Name      string
	Completed bool
	CreatedAt time.Time
}

func TestParseSelect(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT Name, CreatedAt FROM todos WHERE UserID = 'U' ORDER BY CreatedAt DESC LIMIT 2, 5")
	require.NoError(t, err)

	assert.Equal(t, "todos", sc.Tablename)
	assert.Equal(t, []string{"Name", "CreatedAt"}, sc.SelectedFields)
	assert.False(t, sc.Count)
	assert.Equal(t, 2, sc.Skip)
	assert.Equal(t, 5, sc.Limit)
	assert.Equal(t, []string{"CreatedAt"}, sc.OrderBy)
	assert.True(t, sc.OrderByReversed)

	ok, err := sc.Matcher.Match(&todo{UserID: "U"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sc.Matcher.Match(&todo{UserID: "V"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseSelectCount(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT count(*) FROM todos")
	require.NoError(t, err)
	assert.True(t, sc.Count)
	assert.Empty(t, sc.SelectedFields)

	ok, err := sc.Matcher.Match(&todo{})
	require.NoError(t, err)
	assert.True(t, ok, "no where clause matches everything")
}

func TestParseSelectWhere(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT * FROM todos WHERE (GuildID = 'G' OR GuildID = 'H') AND CreatedAt > '2024-01-01 00:00:00' AND Completed = true")
	require.NoError(t, err)

	match := func(td todo) bool {
		ok, err := sc.Matcher.Match(&td)
		require.NoError(t, err)
		return ok
	}

	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	old := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, match(todo{GuildID: "G", CreatedAt: recent, Completed: true}))
	assert.True(t, match(todo{GuildID: "H", CreatedAt: recent, Completed: true}))
	assert.False(t, match(todo{GuildID: "I", CreatedAt: recent, Completed: true}))
	assert.False(t, match(todo{GuildID: "G", CreatedAt: old, Completed: true}))
	assert.False(t, match(todo{GuildID: "G", CreatedAt: recent}))
}

func TestParseSelectIn(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT * FROM todos WHERE UserID IN ('A', 'B')")
	require.NoError(t, err)

	ok, err := sc.Matcher.Match(&todo{UserID: "B"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseSelectErrors(t *testing.T) {
	for _, sql := range []string{
		"DELETE FROM todos",
		"SELECT * FROM",
		"SELECT max(CreatedAt) FROM todos",
		"SELECT * FROM todos WHERE UserID = ?",
		"SELECT * FROM todos WHERE 1 = UserID",
		"SELECT * FROM todos WHERE UserID IS NULL",
		"SELECT * FROM todos, items",
		"SELECT * FROM todos LIMIT 'a'",
	} {
		_, err := stormsql.ParseSelect(sql)
		assert.Error(t, err, sql)
	}
}
