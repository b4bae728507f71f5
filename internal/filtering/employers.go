package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/profile"
)

type employersFilter struct {
	toggle
	employers []string
}

// NewEmployers creates a filter that removes listings by employers configured in the config.
func NewEmployers() Filter {
	return &employersFilter{}
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Validate(cfg *Config) error {
	f.employers = nil
	if cfg == nil {
		return nil
	}
	for _, employer := range cfg.Employers {
		if e := strings.TrimSpace(employer); e != "" {
			f.employers = append(f.employers, e)
		}
	}
	return nil
}

func (f *employersFilter) Apply(_ context.Context, deps Deps, l *profile.Listings) (*profile.Listings, Step, error) {
	initial := l.Len()
	if len(f.employers) == 0 {
		return l, Step{Initial: initial, Dropped: 0, Left: l.Len()}, nil
	}

	excluded := l.Exclude(profile.ListingEmployerField, f.employers)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding listings by employers",
			zap.Strings("excluded_employers", f.employers),
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(excluded), Left: l.Len()}, nil
}

func (f *employersFilter) Status() Status {
	details := map[string]string{}
	if len(f.employers) > 0 {
		details["employers"] = strings.Join(f.employers, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
