package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key := "documents/p1/abc/spec.md"
	require.NoError(t, s.Put(ctx, key, strings.NewReader("# hello"), 7, "text/markdown"))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "# hello", string(body))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStore_Missing(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(ctx, "documents/nope.md")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.NoError(t, s.Delete(ctx, "documents/nope.md"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(ctx, "../escape.md", strings.NewReader("x"), 1, "")
	assert.Error(t, err)

	_, err = s.Get(ctx, "documents/../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalStore_PutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(ctx, "documents/a.md", strings.NewReader("body"), 4, "")
	assert.ErrorIs(t, err, context.Canceled)

	ok, err := s.Exists(context.Background(), "documents/a.md")
	require.NoError(t, err)
	assert.False(t, ok)
}
