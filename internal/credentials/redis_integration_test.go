//go:build integration

package credentials

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("TALENTMATCH_REDIS_ADDR")
	if addr == "" {
		t.Skip("TALENTMATCH_REDIS_ADDR not set")
	}

	prefix := fmt.Sprintf("talentmatch:test:%d", time.Now().UnixNano())
	store := NewRedisStore(&RedisConfig{Addr: addr, Prefix: prefix})

	ctx := context.Background()
	require.NoError(t, store.client.Ping(ctx).Err())

	t.Cleanup(func() {
		store.client.Del(ctx, store.setKey("cand-1"), store.namesKey("cand-1"))
		store.Close()
	})

	return store
}

func TestRedisStoreAddAndList(t *testing.T) {
	store := redisStore(t)
	ctx := context.Background()

	added, err := store.Add(ctx, "cand-1", "Node.js")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, "cand-1", "node.js")
	require.NoError(t, err)
	assert.False(t, added)

	set, err := store.List(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Node.js"}, set.Names())
}

func TestRedisStoreConcurrentAdds(t *testing.T) {
	store := redisStore(t)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		newCount int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := store.Add(ctx, "cand-1", "React")
			assert.NoError(t, err)
			if added {
				mu.Lock()
				newCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, newCount)
}
