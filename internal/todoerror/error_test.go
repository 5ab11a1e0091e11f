package todoerror_test

import (
	"testing"

	"github.com/codestube/bot/internal/todoerror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTodoError(t *testing.T) {
	err := todoerror.Validation("name", "Task name is required.")

	assert.Equal(t, "Task name is required.", err.Error())
	assert.Equal(t, "name", err.Field)
	assert.Equal(t, todoerror.KindValidation, todoerror.KindOf(err))
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := errors.Wrap(todoerror.Unavailable(cause, "could not list todos"), "list")

	assert.Equal(t, "list: could not list todos: connection refused", err.Error())
	assert.True(t, todoerror.Is(err, todoerror.KindStoreUnavailable))
	assert.False(t, todoerror.Is(err, todoerror.KindValidation))
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, todoerror.KindUnknown, todoerror.KindOf(errors.New("boom")))
	assert.Equal(t, todoerror.KindUnknown, todoerror.KindOf(nil))
	assert.False(t, todoerror.Is(nil, todoerror.KindUnknown))
	assert.Equal(t, "session-expired", todoerror.KindSessionExpired.String())
}
