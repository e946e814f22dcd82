package chart

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/towerdash/internal/logging"
)

func TestCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	c := NewCache(dir, time.Hour, logging.Discard())
	clock := clockwork.NewFakeClockAt(time.Now())
	c.clock = clock

	key := "0123456789abcdef0123456789abcdef"
	_, ok := c.Get(key)
	assert.False(t, ok)

	require.NoError(t, c.Set(key, []byte("png")))
	data, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("png"), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	clock.Advance(2 * time.Hour)
	_, ok = c.Get(key)
	assert.False(t, ok, "stale entry")
}

func TestCache_RejectsBadKeys(t *testing.T) {
	c := NewCache(t.TempDir(), 0, logging.Discard())
	assert.Error(t, c.Set("../escape", []byte("x")))
	assert.Error(t, c.Set("", []byte("x")))
	_, ok := c.Get("../escape")
	assert.False(t, ok)
}
