// Package credentials keeps the validated skills of each candidate profile.
// Every backend adds a skill atomically, so concurrent passes of the same
// assessment never duplicate or lose a credential.
package credentials

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/logger"
	"github.com/spigell/talentmatch/internal/secrets"
	"github.com/spigell/talentmatch/internal/skills"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"

	// RedisPasswordEnv overrides the inline redis password.
	RedisPasswordEnv = "TALENTMATCH_REDIS_PASSWORD"
)

// Store persists validated skills per profile.
type Store interface {
	// Add inserts skill into the profile's validated set and reports whether
	// it was new. Adding a present skill is a no-op.
	Add(ctx context.Context, profileID string, skill skills.Name) (bool, error)
	// List returns the profile's validated skills.
	List(ctx context.Context, profileID string) (skills.Set, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend string       `mapstructure:"backend"`
	File    string       `mapstructure:"file"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

// BackendOf returns the normalized backend name of cfg. A nil cfg or empty
// backend means memory.
func BackendOf(cfg *Config) string {
	if cfg == nil {
		return BackendMemory
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		return BackendMemory
	}
	return backend
}

// New returns the backend named by cfg. A nil cfg or empty backend yields an
// in-memory store.
func New(cfg *Config) (Store, error) {
	switch BackendOf(cfg) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if strings.TrimSpace(cfg.File) == "" {
			return nil, fmt.Errorf("credentials file is required for the %s backend", BackendFile)
		}
		return NewFileStore(cfg.File), nil
	case BackendRedis:
		if cfg.Redis == nil || strings.TrimSpace(cfg.Redis.Addr) == "" {
			return nil, fmt.Errorf("redis address is required for the %s backend", BackendRedis)
		}
		password, err := secrets.Load(secrets.Source{
			Name:     "redis password",
			Value:    cfg.Redis.Password,
			File:     cfg.Redis.PasswordFile,
			Env:      RedisPasswordEnv,
			Optional: true,
		})
		if err != nil {
			return nil, err
		}
		redisCfg := *cfg.Redis
		redisCfg.Password = password
		return NewRedisStore(&redisCfg), nil
	default:
		return nil, fmt.Errorf("unsupported credentials backend: %s", cfg.Backend)
	}
}

// MemoryStore is a mutex-guarded in-process store.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]*skills.Set
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*skills.Set)}
}

func (m *MemoryStore) Add(_ context.Context, profileID string, skill skills.Name) (bool, error) {
	if err := checkArgs(profileID, skill); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.profiles[profileID]
	if !ok {
		set = &skills.Set{}
		m.profiles[profileID] = set
	}

	return set.Add(skill), nil
}

func (m *MemoryStore) List(_ context.Context, profileID string) (skills.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.profiles[profileID]
	if !ok {
		return skills.Set{}, nil
	}

	// copy so callers never share the guarded set
	return set.Union(skills.Set{}), nil
}

func checkArgs(profileID string, skill skills.Name) error {
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("profile id is required")
	}
	if skill.Key() == "" {
		return fmt.Errorf("skill name is required")
	}
	return nil
}

// ProfileSink confirms passed assessments into one profile's validated set.
type ProfileSink struct {
	// ctx used only for store calls, the assessment itself has no context
	ctx       context.Context
	store     Store
	profileID string
	logger    *zap.Logger
}

// Sink binds store to profileID so an assessment session can record passes.
func Sink(ctx context.Context, store Store, profileID string, log *zap.Logger) *ProfileSink {
	return &ProfileSink{
		ctx:       ctx,
		store:     store,
		profileID: profileID,
		logger:    logger.WithProfile(log, profileID),
	}
}

// Confirm adds skill to the profile's validated set. Re-confirming an already
// validated skill succeeds without duplicating it.
func (p *ProfileSink) Confirm(skill skills.Name) error {
	added, err := p.store.Add(p.ctx, p.profileID, skill)
	if err != nil {
		return fmt.Errorf("adding validated skill %s: %w", skill, err)
	}

	if added {
		p.logger.Info("skill validated", zap.String("skill", skill.String()))
	} else {
		p.logger.Info("skill validation re-confirmed", zap.String("skill", skill.String()))
	}

	return nil
}
