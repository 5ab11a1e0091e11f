package structs_test

import (
	"testing"
	"time"

	"github.com/codestube/bot/internal/model"
	"github.com/codestube/bot/pkg/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	todo := model.NewTodo("U", "G")
	todo.ID = "id-1"
	todo.Name = "buy milk"
	todo.CreatedAt = at

	p, err := structs.Project(todo, "ID", "Name", "CreatedAt")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"ID":        "id-1",
		"Name":      "buy milk",
		"CreatedAt": at,
	}, p)

	p, err = structs.Project(*todo)
	require.NoError(t, err)
	assert.Empty(t, p)

	_, err = structs.Project(todo, "Owner")
	assert.Error(t, err)

	_, err = structs.Project("not a struct", "Name")
	assert.Error(t, err)
}
