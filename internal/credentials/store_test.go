package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/assessment"
	"github.com/spigell/talentmatch/internal/catalog"
	"github.com/spigell/talentmatch/internal/skills"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "credentials.json")),
	}
}

func TestStoreAddIsIdempotent(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			added, err := store.Add(ctx, "cand-1", "React")
			require.NoError(t, err)
			assert.True(t, added)

			added, err = store.Add(ctx, "cand-1", " react ")
			require.NoError(t, err)
			assert.False(t, added)

			set, err := store.List(ctx, "cand-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"React"}, set.Names())

			other, err := store.List(ctx, "cand-2")
			require.NoError(t, err)
			assert.Zero(t, other.Len())
		})
	}
}

func TestStoreRejectsBlankArguments(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Add(context.Background(), " ", "React")
			assert.Error(t, err)

			_, err = store.Add(context.Background(), "cand-1", "  ")
			assert.Error(t, err)
		})
	}
}

func TestStoreConcurrentAddsDoNotDuplicate(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			skillNames := []skills.Name{"React", "Go", "SQL"}

			var (
				wg       sync.WaitGroup
				mu       sync.Mutex
				newCount int
			)
			for i := 0; i < 30; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					added, err := store.Add(ctx, "cand-1", skillNames[i%len(skillNames)])
					assert.NoError(t, err)
					if added {
						mu.Lock()
						newCount++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, len(skillNames), newCount, "each skill must be reported new exactly once")

			set, err := store.List(ctx, "cand-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"Go", "React", "SQL"}, set.Names())
		})
	}
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.Add(ctx, "cand-1", "React")
	require.NoError(t, err)

	set, err := store.List(ctx, "cand-1")
	require.NoError(t, err)
	set.Add("Go")

	again, err := store.List(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Len())
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	ctx := context.Background()

	_, err := NewFileStore(path).Add(ctx, "cand-1", "Node.js")
	require.NoError(t, err)

	set, err := NewFileStore(path).List(ctx, "cand-1")
	require.NoError(t, err)
	assert.True(t, set.Contains("node.js"))

	matches, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files must be cleaned up")
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Add(context.Background(), "cand-1", "Go")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	store, err := New(nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(&Config{Backend: "File", File: filepath.Join(t.TempDir(), "c.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = New(&Config{Backend: "file"})
	assert.Error(t, err)

	_, err = New(&Config{Backend: "redis"})
	assert.Error(t, err)

	store, err = New(&Config{Backend: "redis", Redis: &RedisConfig{Addr: "localhost:6379"}})
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, store)
	assert.NoError(t, store.(*RedisStore).Close())

	_, err = New(&Config{Backend: "redis", Redis: &RedisConfig{
		Addr:         "localhost:6379",
		PasswordFile: filepath.Join(t.TempDir(), "absent"),
	}})
	assert.ErrorContains(t, err, "redis password")

	_, err = New(&Config{Backend: "postgres"})
	assert.ErrorContains(t, err, "unsupported credentials backend")
}

func TestBackendOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg  *Config
		want string
	}{
		{nil, BackendMemory},
		{&Config{}, BackendMemory},
		{&Config{Backend: "  "}, BackendMemory},
		{&Config{Backend: " File "}, BackendFile},
		{&Config{Backend: "REDIS"}, BackendRedis},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BackendOf(tt.cfg))
	}
}

func TestRedisStoreKeys(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(&RedisConfig{Addr: "localhost:6379"})
	t.Cleanup(func() { store.Close() })

	assert.Equal(t, "talentmatch:credentials:cand-1", store.setKey("cand-1"))
	assert.Equal(t, "talentmatch:credentials:cand-1:names", store.namesKey("cand-1"))

	custom := NewRedisStore(&RedisConfig{Addr: "localhost:6379", Prefix: "tm"})
	t.Cleanup(func() { custom.Close() })
	assert.Equal(t, "tm:cand-1", custom.setKey("cand-1"))
}

type failingStore struct{ err error }

func (f failingStore) Add(context.Context, string, skills.Name) (bool, error) {
	return false, f.err
}

func (f failingStore) List(context.Context, string) (skills.Set, error) {
	return skills.Set{}, f.err
}

func TestSinkWrapsStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	sink := Sink(context.Background(), failingStore{err: boom}, "cand-1", nil)

	assert.ErrorIs(t, sink.Confirm("React"), boom)
}

func TestPassingAssessmentTwiceValidatesOnce(t *testing.T) {
	t.Parallel()

	c, err := catalog.New([]catalog.Question{
		{ID: "q1", Skill: "React", Prompt: "p", Options: []string{"a", "b"}, Correct: 0},
		{ID: "q2", Skill: "React", Prompt: "p", Options: []string{"a", "b"}, Correct: 1},
	})
	require.NoError(t, err)

	store := NewMemoryStore()
	ctx := context.Background()
	var _ assessment.CredentialSink = Sink(ctx, store, "cand-1", zap.NewNop())

	session := assessment.NewSession(c, Sink(ctx, store, "cand-1", zap.NewNop()), zap.NewNop())
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := session.SelectSkill("react")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, session.RecordAnswer(0))
		require.NoError(t, session.Advance())
		require.NoError(t, session.RecordAnswer(1))
		require.NoError(t, session.Advance())

		res, err := session.Result()
		require.NoError(t, err)
		require.True(t, res.Passed)

		session = session.Retake()
	}

	set, err := store.List(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"React"}, set.Names())
}
