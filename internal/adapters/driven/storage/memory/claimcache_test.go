package memory

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cdr-client/internal/logger"
)

func TestNewClaimCache(t *testing.T) {
	cache := NewClaimCache(10)
	require.NotNil(t, cache)
	assert.Equal(t, 0, cache.Len())
	assert.Empty(t, cache.Claimed())
}

func TestClaimCache_TryClaim(t *testing.T) {
	cache := NewClaimCache(10)

	assert.True(t, cache.TryClaim("/src/a.xml"))
	assert.False(t, cache.TryClaim("/src/a.xml"), "second claim must lose")
	assert.True(t, cache.TryClaim("/src/b.xml"))
	assert.Equal(t, []string{"/src/a.xml", "/src/b.xml"}, cache.Claimed())
}

func TestClaimCache_Release(t *testing.T) {
	t.Run("release allows a new claim", func(t *testing.T) {
		cache := NewClaimCache(10)
		require.True(t, cache.TryClaim("/src/a.xml"))

		cache.Release("/src/a.xml")

		assert.Equal(t, 0, cache.Len())
		assert.True(t, cache.TryClaim("/src/a.xml"))
	})

	t.Run("releasing an unclaimed identity is a no-op", func(t *testing.T) {
		cache := NewClaimCache(10)
		require.True(t, cache.TryClaim("/src/a.xml"))

		assert.NotPanics(t, func() { cache.Release("/src/other.xml") })
		assert.Equal(t, []string{"/src/a.xml"}, cache.Claimed())
	})

	t.Run("releasing twice is a no-op", func(t *testing.T) {
		cache := NewClaimCache(10)
		require.True(t, cache.TryClaim("/src/a.xml"))

		cache.Release("/src/a.xml")
		assert.NotPanics(t, func() { cache.Release("/src/a.xml") })
		assert.Equal(t, 0, cache.Len())
	})
}

func TestClaimCache_Clear(t *testing.T) {
	cache := NewClaimCache(10)
	cache.TryClaim("/src/a.xml")
	cache.TryClaim("/src/b.xml")

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	assert.True(t, cache.TryClaim("/src/a.xml"))
}

func TestClaimCache_EvictsOldestWhenFull(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	cache := NewClaimCache(2)
	var evicted []string
	cache.OnEvict(func(identity string) { evicted = append(evicted, identity) })

	require.True(t, cache.TryClaim("/src/1.xml"))
	require.True(t, cache.TryClaim("/src/2.xml"))
	require.True(t, cache.TryClaim("/src/3.xml"))

	assert.Equal(t, []string{"/src/2.xml", "/src/3.xml"}, cache.Claimed())
	assert.Equal(t, []string{"/src/1.xml"}, evicted)
	assert.Contains(t, buf.String(), "[WARN] claim cache full")
	assert.Contains(t, buf.String(), "/src/1.xml")
}

func TestClaimCache_Unbounded(t *testing.T) {
	cache := NewClaimCache(0)
	for i := 0; i < 100; i++ {
		require.True(t, cache.TryClaim(fmt.Sprintf("/src/%d.xml", i)))
	}
	assert.Equal(t, 100, cache.Len())
}

func TestClaimCache_ConcurrentTryClaim_ExactlyOneWinner(t *testing.T) {
	for round := 0; round < 50; round++ {
		cache := NewClaimCache(100)
		var (
			wg      sync.WaitGroup
			winners atomic.Int32
			start   = make(chan struct{})
		)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if cache.TryClaim("/src/race.xml") {
					winners.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, int32(1), winners.Load(), "round %d", round)
	}
}
