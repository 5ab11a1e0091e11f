package model_test

import (
	"testing"

	"github.com/codestube/bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNewTodo(t *testing.T) {
	todo := model.NewTodo("U", "G")
	assert.Equal(t, model.TodoSchemaVersion, todo.SchemaVersion)
	assert.Equal(t, "U", todo.UserID)
	assert.Equal(t, "G", todo.GuildID)
	assert.False(t, todo.Completed)
	assert.Empty(t, todo.GetID())
}

func TestTodoOwnedBy(t *testing.T) {
	guild := model.NewTodo("U", "G")
	assert.True(t, guild.OwnedBy("U", "G"))
	assert.True(t, guild.OwnedBy("U", ""), "no guild skips the partition check")
	assert.False(t, guild.OwnedBy("U", "H"))
	assert.False(t, guild.OwnedBy("V", "G"))
	assert.False(t, guild.OwnedBy("V", ""))

	global := model.NewTodo("U", "")
	assert.True(t, global.OwnedBy("U", ""))
	assert.False(t, global.OwnedBy("U", "G"))
}
