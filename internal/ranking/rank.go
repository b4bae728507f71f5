// Package ranking orders job listings for a candidate, or candidates for a
// listing, by match score.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/talentmatch/internal/matching"
	"github.com/spigell/talentmatch/internal/profile"
)

// ScoredListing pairs a listing with its score for one candidate.
type ScoredListing struct {
	Listing   *profile.Listing   `json:"listing"`
	Score     int                `json:"score"`
	Breakdown matching.Breakdown `json:"breakdown"`
}

// ScoredCandidate pairs a candidate with its score for one listing.
type ScoredCandidate struct {
	Candidate *profile.Candidate `json:"candidate"`
	Score     int                `json:"score"`
	Breakdown matching.Breakdown `json:"breakdown"`
}

// Request is one independent ranking job for RankBatch.
type Request struct {
	Candidate *profile.Candidate
	Listings  []*profile.Listing
	Limit     int
}

// Rank scores every listing for candidate and returns the top limit results,
// highest score first. Equal scores keep their input order. A non-positive
// limit returns every listing. listings is not modified.
func Rank(candidate *profile.Candidate, listings []*profile.Listing, limit int) []ScoredListing {
	prepared := matching.Prepare(candidate)

	scored := make([]ScoredListing, 0, len(listings))
	for _, listing := range listings {
		b := prepared.Explain(listing)
		scored = append(scored, ScoredListing{Listing: listing, Score: b.Total, Breakdown: b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return truncate(scored, limit)
}

// RankCandidates scores every candidate against listing and returns the top
// limit results with the same ordering rules as Rank.
func RankCandidates(listing *profile.Listing, candidates []*profile.Candidate, limit int) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		b := matching.Prepare(candidate).Explain(listing)
		scored = append(scored, ScoredCandidate{Candidate: candidate, Score: b.Total, Breakdown: b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return truncate(scored, limit)
}

// RankBatch runs independent requests concurrently with at most workers
// goroutines (unbounded when workers <= 0). Results are in request order.
// Cancelling ctx stops requests that have not started yet.
func RankBatch(ctx context.Context, requests []Request, workers int) ([][]ScoredListing, error) {
	results := make([][]ScoredListing, len(requests))

	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, req := range requests {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			// each goroutine writes only its own index
			results[i] = Rank(req.Candidate, req.Listings, req.Limit)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Listings returns the listings of scored in order.
func Listings(scored []ScoredListing) []*profile.Listing {
	out := make([]*profile.Listing, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Listing)
	}
	return out
}

// Scores returns the score per listing ID.
func Scores(scored []ScoredListing) map[string]int {
	out := make(map[string]int, len(scored))
	for _, s := range scored {
		if s.Listing == nil {
			continue
		}
		out[s.Listing.ID] = s.Score
	}
	return out
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit:limit]
	}
	return items
}
