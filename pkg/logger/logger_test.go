package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", "json")
	require.Error(t, err)
}

func TestNewWithFileWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.log")

	log, err := New("info", "json", WithFile(FileOptions{Path: path, MaxSizeMB: 1}))
	require.NoError(t, err)

	log.WithComponent("test").Info("hello", "user_id", "u1", "count", 3)
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"user_id":"u1"`)
}

func TestConvertToFields(t *testing.T) {
	fields := convertToFields([]interface{}{"a", 1, "err", errors.New("boom"), "dangling"})
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "err", fields[1].Key)
	assert.Equal(t, "dangling", fields[2].Key)
}
