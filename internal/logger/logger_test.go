package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/codestube/bot/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithFields(logrus.Fields{"user_id": "U", "count": 3}).Warn("todos cleared")
	assert.Regexp(t, `^\[[^\]]+\] WARNING: todos cleared \(count=3, user_id=U\)\n$`, buf.String())

	_, err = logger.New(logger.Options{Level: "chatty"})
	assert.Error(t, err)

	log, err = logger.New(logger.Options{Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestFileHook(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "todobot.log")

	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Output: &buf, File: filename})
	require.NoError(t, err)

	log.Info("connected to discord gateway")

	payload, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(payload), " INFO: connected to discord gateway\n")
	assert.Equal(t, buf.String(), string(payload))
}

func TestDump(t *testing.T) {
	type event struct {
		Type  string
		Count int
	}
	dump := logger.Dump(event{Type: "todo.cleared", Count: 2})
	assert.Contains(t, dump, `Type: "todo.cleared"`)
	assert.Contains(t, dump, "Count: 2")
}
