package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLitePublisher(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "journal.db")

	p, err := New(Config{Path: dbPath}, "host1")
	require.NoError(t, err)
	require.NotNil(t, p)
	defer func() { _ = p.Close() }()

	journal := p.(*Publisher)

	t.Run("publish batch", func(t *testing.T) {
		err := p.Publish(context.Background(), []string{"a", "b", "c"})
		assert.NoError(t, err)

		n, err := journal.Count(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("publish second batch appends", func(t *testing.T) {
		err := p.Publish(context.Background(), []string{"d"})
		assert.NoError(t, err)

		n, err := journal.Count(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		err := p.Publish(context.Background(), nil)
		assert.NoError(t, err)

		n, err := journal.Count(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestSQLitePublisherRequiresPath(t *testing.T) {
	_, err := New(Config{}, "host1")
	assert.Error(t, err)
}

func TestSQLitePublisherCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "journal.db")
	p, err := New(Config{Path: dbPath}, "host1")
	require.NoError(t, err)
	_ = p.Close()
}
