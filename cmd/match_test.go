package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/credentials"
	"github.com/spigell/talentmatch/internal/profile"
	"github.com/spigell/talentmatch/internal/ranking"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMatchActions(t *testing.T) {
	ranked := &profile.Listings{Items: []*profile.Listing{{ID: "1"}}}

	items := matchActions(&Config{}, ranked)
	assert.Equal(t, []string{PromptReportByEmployers, PromptExplain, PromptListingsToFile, PromptExit}, items)

	items = matchActions(&Config{ExcludeFile: "exclude.json"}, ranked)
	assert.Contains(t, items, PromptAppendToExcludeFile)
	assert.Equal(t, PromptExit, items[len(items)-1])

	items = matchActions(&Config{ExcludeFile: "exclude.json"}, &profile.Listings{})
	assert.NotContains(t, items, PromptAppendToExcludeFile)
}

func TestFilterConfig(t *testing.T) {
	config := &Config{
		ExcludeFile: "exclude.json",
		Match: &MatchConfig{
			MinimumScore: 40,
			Exclude: &struct {
				Employers []string `mapstructure:"employers"`
			}{Employers: []string{"Acme"}},
		},
	}

	cfg := filterConfig(config)
	assert.Equal(t, []string{"Acme"}, cfg.Employers)
	assert.Equal(t, "exclude.json", cfg.ExcludeFile)
	assert.Equal(t, 40, cfg.MinimumScore)

	assert.Nil(t, (&Config{Match: &MatchConfig{}}).excludedEmployers())
}

func TestHandleAction(t *testing.T) {
	config := &Config{Match: &MatchConfig{}}
	ranked := &profile.Listings{Items: []*profile.Listing{{ID: "1", Employer: "Acme"}}}
	scored := ranking.Rank(&profile.Candidate{ID: "cand"}, ranked.Items, 0)

	assert.NoError(t, handleAction(PromptReportByEmployers, zap.NewNop(), config, ranked, scored))
	assert.ErrorIs(t, handleAction(PromptExit, zap.NewNop(), config, ranked, scored), errExit)
	assert.ErrorContains(t, handleAction("dance", zap.NewNop(), config, ranked, scored), "invalid action")
}

func TestAppendToExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	ranked := &profile.Listings{Items: []*profile.Listing{{ID: "1"}, {ID: "2"}}}

	require.NoError(t, appendToExcludeFile(zap.NewNop(), path, ranked))
	assert.Zero(t, ranked.Len())

	more := &profile.Listings{Items: []*profile.Listing{{ID: "3"}}}
	require.NoError(t, appendToExcludeFile(zap.NewNop(), path, more))

	excluded, err := profile.GetExcludedListingsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, excluded.IDs())
}

func TestWithCredentials(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewMemoryStore()
	_, err := store.Add(ctx, "cand", "React")
	require.NoError(t, err)

	original := &profile.Candidate{ID: "cand", Skills: []string{"React"}}
	merged, err := withCredentials(ctx, store, original)
	require.NoError(t, err)

	assert.Equal(t, []string{"React"}, merged.ValidatedSkills)
	assert.Empty(t, original.ValidatedSkills)
}

func TestMatchAll(t *testing.T) {
	candidates := writeFile(t, "candidates.yaml", `
candidates:
  - id: alice
    skills: [React]
  - id: bob
    skills: [SQL]
    experience_years: "3"
`)
	listings := &profile.Listings{Items: []*profile.Listing{
		{ID: "react", Skills: []string{"React"}},
		{ID: "sql", Skills: []string{"SQL"}},
	}}

	config := &Config{Candidates: candidates, Match: &MatchConfig{Limit: 1, Workers: 2}}
	require.NoError(t, matchAll(context.Background(), zap.NewNop(), config, credentials.NewMemoryStore(), listings, nil))
	assert.Equal(t, 2, listings.Len(), "per-candidate filtering must not touch the shared listings")

	err := matchAll(context.Background(), zap.NewNop(), &Config{Match: &MatchConfig{}}, credentials.NewMemoryStore(), listings, nil)
	assert.ErrorContains(t, err, "candidates file is required")
}

func TestMatchAllSkipsDisabledFilters(t *testing.T) {
	candidates := writeFile(t, "candidates.yaml", `
candidates:
  - id: alice
    skills: [React]
`)
	listings := &profile.Listings{Items: []*profile.Listing{{ID: "react", Skills: []string{"React"}}}}

	// a negative minimum fails validation unless the filter is skipped
	config := &Config{Candidates: candidates, Match: &MatchConfig{MinimumScore: -1, Workers: 1}}

	err := matchAll(context.Background(), zap.NewNop(), config, credentials.NewMemoryStore(), listings, nil)
	assert.ErrorContains(t, err, "minimum_score")

	err = matchAll(context.Background(), zap.NewNop(), config, credentials.NewMemoryStore(), listings, []string{" minimum_score "})
	assert.NoError(t, err)
}

func TestNewFiltersDisablesByName(t *testing.T) {
	for _, f := range newFilters([]string{"employers", "unknown"}) {
		assert.Equal(t, f.Name() != "employers", f.IsEnabled(), f.Name())
	}
}

func TestScoredAtUsesPosition(t *testing.T) {
	listings := []*profile.Listing{
		{ID: "senior go dev", Title: "Senior Go"},
		{ID: "senior", Title: "Senior"},
	}
	scored := []ranking.ScoredListing{{Listing: listings[1], Score: 10}, {Listing: listings[0], Score: 20}}
	ranked := &profile.Listings{Items: listings}

	found, err := scoredAt(ranked, scored, 0)
	require.NoError(t, err)
	assert.Equal(t, "senior go dev", found.Listing.ID)
	assert.Equal(t, 20, found.Score)

	_, err = scoredAt(ranked, scored, 2)
	assert.Error(t, err)
}

func TestLoadProfileRequiresPath(t *testing.T) {
	_, err := loadProfile(context.Background(), &Config{}, credentials.NewMemoryStore())
	assert.Error(t, err)

	path := writeFile(t, "profile.yaml", "id: cand\nskills: [Go]\n")
	candidate, err := loadProfile(context.Background(), &Config{Profile: path}, credentials.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, "cand", candidate.ID)
}

func TestLoadCatalog(t *testing.T) {
	cat, err := loadCatalog(&Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Skills())

	_, err = loadCatalog(&Config{Catalog: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}
