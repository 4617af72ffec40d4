package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, name := range files {
		data, err := FS.ReadFile(name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(data), "-- +goose Down"), name)
	}

	initial, err := FS.ReadFile("00001_initial.sql")
	require.NoError(t, err)
	assert.Contains(t, string(initial), "CREATE UNIQUE INDEX unique_message_user ON announcement_user (announcement_id, user_id)")
}
