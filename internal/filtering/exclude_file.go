package filtering

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/profile"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes listings recorded in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, l *profile.Listings) (*profile.Listings, Step, error) {
	initial := l.Len()
	if f.path == "" {
		return l, Step{Initial: initial, Dropped: 0, Left: l.Len()}, nil
	}

	excluded, err := profile.GetExcludedListingsFromFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		if deps.Logger != nil {
			deps.Logger.Debug("exclude file does not exist yet", zap.String("path", f.path))
		}
		return l, Step{Initial: initial, Dropped: 0, Left: l.Len()}, nil
	}
	if err != nil {
		return l, Step{}, fmt.Errorf("getting excluded listings from file: %w", err)
	}

	removed := l.Exclude(profile.ListingIDField, excluded.IDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding listings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_listings", removed),
			zap.Int("listings_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(removed), Left: l.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
