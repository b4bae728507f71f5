package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/profile"
)

type minimumScoreFilter struct {
	toggle
	minimum int
}

// NewMinimumScore creates a filter that drops listings scoring below the
// configured minimum for the candidate.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinimumScore < 0 {
		return fmt.Errorf("minimum score must not be negative, got %d", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, l *profile.Listings) (*profile.Listings, Step, error) {
	initial := l.Len()
	if f.minimum == 0 {
		return l, Step{Initial: initial, Dropped: 0, Left: l.Len()}, nil
	}

	if deps.Candidate == nil {
		return l, Step{}, fmt.Errorf("candidate is required to score listings")
	}

	excluded := l.Keep(func(listing *profile.Listing) bool {
		return deps.Candidate.Score(listing) >= f.minimum
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding listings below minimum score",
			zap.Int("minimum_score", f.minimum),
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(excluded), Left: l.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.minimum)},
	}
}
