// FILE: pkg/fetchcache/cache_test.go

package fetchcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mailassist-be/pkg/store"
)

func sampleDocs(n int) []store.Document {
	docs := make([]store.Document, n)
	for i := range docs {
		docs[i] = store.Document{
			Content:  "body",
			Metadata: map[string]string{store.MetaSource: "msg"},
		}
	}
	return docs
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New(DefaultTTL)
	_, ok := c.Get("recent", 10)
	assert.False(t, ok)
}

func TestHitWithinTTL(t *testing.T) {
	c := New(DefaultTTL)
	c.Put("recent", 10, sampleDocs(3), time.Minute)

	docs, ok := c.Get("recent", 10)
	require.True(t, ok)
	assert.Len(t, docs, 3)
}

func TestDistinctParametersDistinctEntries(t *testing.T) {
	c := New(DefaultTTL)
	c.Put("recent", 10, sampleDocs(10), time.Minute)

	_, ok := c.Get("recent", 20)
	assert.False(t, ok, "different count must not share an entry")
	_, ok = c.Get("weekly", 10)
	assert.False(t, ok, "different mode must not share an entry")
}

func TestExpiryForcesRefetch(t *testing.T) {
	c := New(DefaultTTL)
	c.Put("weekly", 5, sampleDocs(5), 20*time.Millisecond)

	_, ok := c.Get("weekly", 5)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("weekly", 5)
	assert.False(t, ok, "entry past its TTL must read as a miss")
}

func TestInvalidate(t *testing.T) {
	c := New(DefaultTTL)
	c.Put("recent", 10, sampleDocs(1), time.Minute)
	c.Invalidate("recent", 10)

	_, ok := c.Get("recent", 10)
	assert.False(t, ok)
}
