package credentials

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/talentmatch/internal/skills"
)

const defaultRedisPrefix = "talentmatch:credentials"

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	DB           int    `mapstructure:"db"`
	Prefix       string `mapstructure:"prefix"`
}

// RedisStore keeps each profile's validated skills in a Redis set of
// normalized names. SADD is atomic on the server, so concurrent adds of the
// same skill cannot duplicate it. A companion hash keeps display spellings.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(cfg *RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Prefix)
}

func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) setKey(profileID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, profileID)
}

func (r *RedisStore) namesKey(profileID string) string {
	return fmt.Sprintf("%s:%s:names", r.prefix, profileID)
}

func (r *RedisStore) Add(ctx context.Context, profileID string, skill skills.Name) (bool, error) {
	if err := checkArgs(profileID, skill); err != nil {
		return false, err
	}

	var added *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, r.setKey(profileID), skill.Key())
		pipe.HSetNX(ctx, r.namesKey(profileID), skill.Key(), skill.String())
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis add validated skill: %w", err)
	}

	return added.Val() == 1, nil
}

func (r *RedisStore) List(ctx context.Context, profileID string) (skills.Set, error) {
	members, err := r.client.SMembers(ctx, r.setKey(profileID)).Result()
	if err != nil {
		return skills.Set{}, fmt.Errorf("redis list validated skills: %w", err)
	}

	names, err := r.client.HGetAll(ctx, r.namesKey(profileID)).Result()
	if err != nil {
		return skills.Set{}, fmt.Errorf("redis list skill names: %w", err)
	}

	// SMEMBERS order is unspecified
	sort.Strings(members)

	var set skills.Set
	for _, member := range members {
		name := member
		if display, ok := names[member]; ok && display != "" {
			name = display
		}
		set.Add(skills.Name(name))
	}

	return set, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
