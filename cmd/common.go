package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/catalog"
	"github.com/spigell/talentmatch/internal/credentials"
	"github.com/spigell/talentmatch/internal/logger"
	"github.com/spigell/talentmatch/internal/profile"
	"github.com/spigell/talentmatch/internal/ranking"
)

// titles longer than this are cut in log lines
const maxTitleLogLength = 80

var errExit = errors.New("exit requested")

// setup builds the logger and decodes the config shared by every command.
func setup() (*zap.Logger, *Config) {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zl.Fatal("getting a config", zap.Error(err))
	}

	return zl, config
}

func openStore(config *Config, logger *zap.Logger) credentials.Store {
	store, err := credentials.New(config.Credentials)
	if err != nil {
		logger.Fatal("opening credentials store", zap.Error(err))
	}

	logger.Debug("credentials store opened", zap.String("backend", credentials.BackendOf(config.Credentials)))

	return store
}

func closeStore(store credentials.Store, logger *zap.Logger) {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("closing credentials store", zap.Error(err))
	}
}

func loadCatalog(config *Config) (*catalog.Catalog, error) {
	if strings.TrimSpace(config.Catalog) == "" {
		return catalog.Default()
	}
	return catalog.Load(config.Catalog)
}

// withCredentials merges the validated skills stored for c into a copy of it.
func withCredentials(ctx context.Context, store credentials.Store, c *profile.Candidate) (*profile.Candidate, error) {
	validated, err := store.List(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing validated skills of %s: %w", c.ID, err)
	}
	return c.WithValidated(validated), nil
}

func loadProfile(ctx context.Context, config *Config, store credentials.Store) (*profile.Candidate, error) {
	if strings.TrimSpace(config.Profile) == "" {
		return nil, errors.New("candidate profile is required (--profile or the 'profile' key)")
	}

	candidate, err := profile.LoadCandidate(config.Profile)
	if err != nil {
		return nil, err
	}

	return withCredentials(ctx, store, candidate)
}

func withProfile(l *zap.Logger, profileID string) *zap.Logger {
	return logger.WithProfile(l, profileID)
}

func logRanked(l *zap.Logger, scored []ranking.ScoredListing) {
	for i, s := range scored {
		l.Info("ranked listing",
			zap.Int("position", i+1),
			zap.String(logger.FieldListing, s.Listing.ID),
			zap.String("title", logger.TruncateTitle(s.Listing.Title, maxTitleLogLength)),
			zap.String("employer", s.Listing.Employer),
			zap.Int("score", s.Score),
		)
	}
}
