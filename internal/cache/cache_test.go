package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readdit/pkg/models"
)

func TestGetOrLoadCachesOnMiss(t *testing.T) {
	s := NewStore[int]("test")
	calls := 0
	load := func() (int, bool) {
		calls++
		return 42, true
	}

	v, ok := s.GetOrLoad("a", load)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	v, ok = s.GetOrLoad("a", load)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls, "second lookup must be served from cache")
	assert.Equal(t, 1, s.Len())
}

func TestGetOrLoadSkipsUncacheable(t *testing.T) {
	s := NewStore[string]("test")
	calls := 0
	load := func() (string, bool) {
		calls++
		return "", false
	}

	_, loaded := s.GetOrLoad("k", load)
	assert.False(t, loaded)
	s.GetOrLoad("k", load)
	assert.Equal(t, 2, calls)
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestKeysAreIndependent(t *testing.T) {
	s := NewStore[int]("test")
	s.Set("a", 1)
	s.Set("b", 2)

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a)
	b, _ := s.Get("b")
	assert.Equal(t, 2, b)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore[int]("test")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.GetOrLoad("shared", func() (int, bool) { return 7, true })
			s.Set("k", i)
		}(i)
	}
	wg.Wait()

	v, ok := s.Get("shared")
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestNewSetStartsEmpty(t *testing.T) {
	set := New()
	assert.Zero(t, set.Works.Len())
	assert.Zero(t, set.Languages.Len())
	assert.Zero(t, set.Posts.Len())

	set.Languages.Set("/works/OL1W", models.NewLanguageSet("eng"))
	langs, ok := set.Languages.Get("/works/OL1W")
	require.True(t, ok)
	assert.True(t, langs.Has("eng"))
}
