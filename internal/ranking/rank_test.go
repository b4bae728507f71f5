package ranking

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/talentmatch/internal/matching"
	"github.com/spigell/talentmatch/internal/profile"
)

func candidate() *profile.Candidate {
	return &profile.Candidate{
		ID:              "cand",
		Skills:          []string{"React", "Node.js", "SQL"},
		ValidatedSkills: []string{"React"},
		Experience:      "5",
		Location:        "Berlin",
	}
}

func ids(scored []ScoredListing) []string {
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Listing.ID)
	}
	return out
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	t.Parallel()

	listings := []*profile.Listing{
		{ID: "low", Skills: []string{"Rust"}},
		{ID: "high", Skills: []string{"React", "SQL"}, EmploymentType: "Full-time", Location: "Berlin"},
		{ID: "mid", Skills: []string{"SQL"}},
	}

	ranked := Rank(candidate(), listings, 10)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, ids(ranked))
	assert.Equal(t, 30+20+30+20+25, ranked[0].Score)
	assert.Equal(t, ranked[0].Score, ranked[0].Breakdown.Total)
	assert.Equal(t, 0, ranked[2].Score)
}

func TestRankLimitLargerThanInput(t *testing.T) {
	t.Parallel()

	listings := []*profile.Listing{
		{ID: "a", Skills: []string{"SQL"}},
		{ID: "b", Featured: true},
		{ID: "c", Skills: []string{"React"}},
	}

	ranked := Rank(candidate(), listings, 10)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"c", "a", "b"}, ids(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankTruncatesToHighestScoring(t *testing.T) {
	t.Parallel()

	listings := []*profile.Listing{
		{ID: "zero-1"},
		{ID: "sql", Skills: []string{"SQL"}},
		{ID: "zero-2"},
		{ID: "react", Skills: []string{"React"}},
		{ID: "featured", Featured: true},
	}

	ranked := Rank(candidate(), listings, 2)
	assert.Equal(t, []string{"react", "sql"}, ids(ranked))

	assert.Equal(t, 2, cap(ranked), "truncated result must not expose the dropped tail")
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	listings := make([]*profile.Listing, 0, 6)
	for i := 0; i < 6; i++ {
		l := &profile.Listing{ID: fmt.Sprintf("job-%d", i)}
		if i%2 == 0 {
			l.Featured = true
		}
		listings = append(listings, l)
	}

	ranked := Rank(candidate(), listings, 0)

	assert.Equal(t, []string{"job-0", "job-2", "job-4", "job-1", "job-3", "job-5"}, ids(ranked))
}

func TestRankIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	listings := []*profile.Listing{
		{ID: "a"},
		{ID: "b", Skills: []string{"SQL"}},
		{ID: "c", Skills: []string{"React"}},
	}
	before := append([]*profile.Listing(nil), listings...)

	first := Rank(candidate(), listings, 2)
	second := Rank(candidate(), listings, 2)

	assert.Equal(t, first, second)
	assert.Equal(t, before, listings)
	assert.Equal(t, []string{"a", "b", "c"}, []string{listings[0].ID, listings[1].ID, listings[2].ID})
}

func TestRankEmptyAndNonPositiveLimit(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Rank(candidate(), nil, 5))

	listings := []*profile.Listing{{ID: "a"}, {ID: "b"}}
	assert.Len(t, Rank(candidate(), listings, 0), 2)
	assert.Len(t, Rank(candidate(), listings, -1), 2)
}

func TestRankCandidates(t *testing.T) {
	t.Parallel()

	listing := &profile.Listing{ID: "job", Skills: []string{"Go", "SQL"}, EmploymentType: "Contract"}
	candidates := []*profile.Candidate{
		{ID: "none"},
		{ID: "go-contract", Skills: []string{"Go"}, ContractPreference: true},
		{ID: "both", Skills: []string{"go", "sql"}, ValidatedSkills: []string{"SQL"}},
		{ID: "none-2"},
	}

	ranked := RankCandidates(listing, candidates, 3)

	require.Len(t, ranked, 3)
	assert.Equal(t, "go-contract", ranked[0].Candidate.ID)
	assert.Equal(t, matching.ContractWeight+matching.SkillWeight, ranked[0].Score)
	assert.Equal(t, "both", ranked[1].Candidate.ID)
	assert.Equal(t, 2*matching.SkillWeight+matching.ValidatedSkillWeight, ranked[1].Score)
	assert.Equal(t, "none", ranked[2].Candidate.ID)
}

func TestRankBatch(t *testing.T) {
	t.Parallel()

	listings := []*profile.Listing{
		{ID: "a", Skills: []string{"SQL"}},
		{ID: "b", Skills: []string{"React"}},
	}

	requests := make([]Request, 0, 20)
	for i := 0; i < 20; i++ {
		c := candidate()
		if i%2 == 1 {
			c.Skills = []string{"SQL"}
		}
		requests = append(requests, Request{Candidate: c, Listings: listings, Limit: 1})
	}

	results, err := RankBatch(context.Background(), requests, 4)
	require.NoError(t, err)
	require.Len(t, results, len(requests))

	for i, res := range results {
		require.Len(t, res, 1)
		want := Rank(requests[i].Candidate, listings, 1)
		assert.Equal(t, want, res, "request %d", i)
	}
	assert.Equal(t, "b", results[0][0].Listing.ID)
	assert.Equal(t, "a", results[1][0].Listing.ID)
}

func TestRankBatchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RankBatch(ctx, []Request{{Candidate: candidate()}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListingsAndScores(t *testing.T) {
	t.Parallel()

	listings := []*profile.Listing{{ID: "a"}, {ID: "b", Skills: []string{"SQL"}}}
	ranked := Rank(candidate(), listings, 0)

	assert.Equal(t, []*profile.Listing{listings[1], listings[0]}, Listings(ranked))
	assert.Equal(t, map[string]int{"a": 0, "b": matching.SkillWeight}, Scores(ranked))
}
