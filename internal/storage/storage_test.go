package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amiyamandal-dev/inkwell/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "avatars/a.png", want: "avatars/a.png"},
		{in: "/articles/b.jpg", want: "articles/b.jpg"},
		{in: `avatars\c.gif`, want: "avatars/c.gif"},
		{in: "../etc/passwd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStorage_PutDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "http://localhost:5000/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	file, err := s.Put(ctx, "avatars/me.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "me.png", file.Filename)
	assert.Equal(t, "uploads/avatars/me.png", file.Path)
	assert.Equal(t, "http://localhost:5000/uploads/avatars/me.png", file.URL)
	assert.EqualValues(t, 9, file.Size)

	data, err := os.ReadFile(filepath.Join(root, "avatars", "me.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	exists, err := s.Exists(ctx, "avatars/me.png")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Put(ctx, "avatars/me.png", strings.NewReader("again"), 5, "image/png")
	assert.Error(t, err)

	require.NoError(t, s.Delete(ctx, "avatars/me.png"))
	assert.ErrorIs(t, s.Delete(ctx, "avatars/me.png"), domain.ErrFileNotFound)
}
