package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/profile"
	"github.com/spigell/talentmatch/internal/ranking"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Rank candidate profiles for a job listing",
	Run: func(cmd *cobra.Command, _ []string) {
		rankCandidates(cmd)
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().String("listing", "", "id of the listing to rank candidates for")
	candidatesCmd.Flags().IntP("limit", "n", 0, "maximum number of candidates to show. Zero or less shows all.")

	candidatesCmd.MarkFlagRequired("listing")
}

func rankCandidates(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()

	listingID := strings.TrimSpace(cmd.Flag("listing").Value.String())
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		logger.Fatal("reading limit flag", zap.Error(err))
	}

	if strings.TrimSpace(config.Listings) == "" || strings.TrimSpace(config.Candidates) == "" {
		logger.Fatal("listings and candidates files are required")
	}

	listings, err := profile.LoadListings(config.Listings)
	if err != nil {
		logger.Fatal("loading listings", zap.Error(err))
	}

	listing := listings.FindByID(listingID)
	if listing == nil {
		logger.Fatal("listing with given id not found",
			zap.String("listing_id", listingID),
			zap.Strings("existed listing ids", listings.IDs()),
		)
	}

	candidates, err := profile.LoadCandidates(config.Candidates)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	store := openStore(config, logger)
	defer closeStore(store, logger)

	merged := make([]*profile.Candidate, 0, len(candidates))
	for _, c := range candidates {
		m, err := withCredentials(ctx, store, c)
		if err != nil {
			logger.Fatal("merging validated skills", zap.Error(err))
		}
		merged = append(merged, m)
	}

	ranked := ranking.RankCandidates(listing, merged, limit)

	logger = logger.With(zap.String("listing_id", listing.ID))
	for i, s := range ranked {
		logger.Info("ranked candidate",
			zap.Int("position", i+1),
			zap.String("profile_id", s.Candidate.ID),
			zap.String("name", s.Candidate.Name),
			zap.Int("score", s.Score),
			zap.Strings("matched_skills", s.Breakdown.MatchedSkills),
			zap.Strings("validated_match", s.Breakdown.ValidatedMatch),
		)
	}

	logger.Info("ranked candidates", zap.Int("count", len(ranked)), zap.Int("total", len(candidates)))
}
