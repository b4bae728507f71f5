package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/credentials"
	"github.com/spigell/talentmatch/internal/filtering"
	"github.com/spigell/talentmatch/internal/matching"
	"github.com/spigell/talentmatch/internal/profile"
	"github.com/spigell/talentmatch/internal/ranking"
)

const (
	PromptExit                = "Exit"
	PromptBack                = "back"
	PromptReportByEmployers   = "Report by employers"
	PromptExplain             = "Explain a listing score"
	PromptAppendToExcludeFile = "Append all listings to exclude file"
	PromptListingsToFile      = "Dump listings to file"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank job listings for the candidate profile",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().IntP("limit", "n", 10, "maximum number of listings to show. Zero or less shows all.")
	matchCmd.Flags().Int("minimum-score", 0, "drop listings scoring below this value")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with listings to exclude. Default is unset.")
	matchCmd.Flags().Bool("all", false, "rank listings for every candidate of the candidates file")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for actions, print the report by employers and exit")
	matchCmd.Flags().StringSlice("disable-filter", nil, "filters to skip: exclude_file, employers, minimum_score")

	viper.BindPFlag("match.limit", matchCmd.Flags().Lookup("limit"))
	viper.BindPFlag("match.minimum-score", matchCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()
	logger.Info("starting the talentmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.Listings) == "" {
		logger.Fatal("listings file is required (--listings or the 'listings' key)")
	}

	store := openStore(config, logger)
	defer closeStore(store, logger)

	listings, err := profile.LoadListings(config.Listings)
	if err != nil {
		logger.Fatal("loading listings", zap.Error(err))
	}

	logger.Info("getting listings", zap.Int("count", listings.Len()))

	if listings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no listings found"))
		return
	}

	disabled, _ := cmd.Flags().GetStringSlice("disable-filter")

	if cmd.Flag("all").Value.String() == "true" {
		if err := matchAll(ctx, logger, config, store, listings, disabled); err != nil {
			logger.Fatal("ranking listings for all candidates", zap.Error(err))
		}
		return
	}

	candidate, err := loadProfile(ctx, config, store)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.Error(err))
	}

	logger = withProfile(logger, candidate.ID)
	logger.Info("candidate loaded",
		zap.Int("skills", len(candidate.Skills)),
		zap.Strings("validated_skills", candidate.ValidatedSkills),
	)

	prepared := matching.Prepare(candidate)

	filters := newFilters(disabled)

	listings, err = filtering.Run(ctx, filterConfig(config), filtering.Deps{Logger: logger, Candidate: prepared}, filters, listings)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	for _, status := range filtering.Describe(filters) {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	if listings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no listings left after filters"))
		return
	}

	scored := ranking.Rank(candidate, listings.Items, config.Match.Limit)
	logRanked(logger, scored)

	ranked := &profile.Listings{Items: ranking.Listings(scored)}

	action := PromptReportByEmployers
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			prompt := promptui.Select{
				Label: "Proceed?",
				Items: matchActions(config, ranked),
			}
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of listings", zap.Int("count", ranked.Len()))

		err = handleAction(action, logger, config, ranked, scored)
		if err == nil && cmd.Flag("auto-approve").Value.String() == "true" {
			return
		}
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// newFilters returns the default filter chain with the named filters disabled.
func newFilters(disabled []string) []filtering.Filter {
	filters := filtering.Default()
	for _, name := range disabled {
		filtering.DisableByName(filters, strings.TrimSpace(name), "disabled via flag")
	}
	return filters
}

func filterConfig(config *Config) *filtering.Config {
	return &filtering.Config{
		Employers:    config.excludedEmployers(),
		ExcludeFile:  config.ExcludeFile,
		MinimumScore: config.Match.MinimumScore,
	}
}

func matchActions(config *Config, ranked *profile.Listings) []string {
	items := []string{PromptReportByEmployers, PromptExplain, PromptListingsToFile}
	if strings.TrimSpace(config.ExcludeFile) != "" && ranked.Len() != 0 {
		items = append(items, PromptAppendToExcludeFile)
	}
	return append(items, PromptExit)
}

func handleAction(action string, logger *zap.Logger, config *Config, ranked *profile.Listings, scored []ranking.ScoredListing) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByEmployers:
		pretty, _ := json.MarshalIndent(ranked.ReportByEmployer(ranking.Scores(scored)), "", "  ")
		logger.Info(string(pretty), zap.Int("listings count", ranked.Len()))
		return nil
	case PromptExplain:
		return explain(logger, ranked, scored)
	case PromptListingsToFile:
		filename, err := ranked.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.ExcludeFile, ranked)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func explain(logger *zap.Logger, ranked *profile.Listings, scored []ranking.ScoredListing) error {
	for {
		items := make([]string, 0, ranked.Len()+1)
		for _, l := range ranked.Items {
			items = append(items, fmt.Sprintf("%s %s / %s / %s", l.ID, l.Title, l.Employer, l.URL))
		}

		listingPrompt := promptui.Select{
			Label: "Choose a listing and press ENTER",
			Items: append(items, PromptBack),
		}

		i, selected, err := listingPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack && i == len(items) {
			return nil
		}

		found, err := scoredAt(ranked, scored, i)
		if err != nil {
			return err
		}

		pretty, _ := json.MarshalIndent(found.Breakdown, "", "  ")
		logger.Info(string(pretty), zap.String("listing_id", found.Listing.ID), zap.Int("score", found.Score))
	}
}

// scoredAt returns the score of the ranked listing at index i.
func scoredAt(ranked *profile.Listings, scored []ranking.ScoredListing, i int) (*ranking.ScoredListing, error) {
	if i < 0 || i >= ranked.Len() {
		return nil, fmt.Errorf("there is no listing at position %d", i)
	}

	id := ranked.Items[i].ID
	for j := range scored {
		if scored[j].Listing.ID == id {
			return &scored[j], nil
		}
	}
	return nil, fmt.Errorf("there is no such listing id %s", id)
}

func appendToExcludeFile(logger *zap.Logger, excludeFile string, ranked *profile.Listings) error {
	excluded, err := profile.GetExcludedListingsFromFile(excludeFile)
	if errors.Is(err, os.ErrNotExist) {
		excluded, err = &profile.ExcludedListings{}, nil
	}
	if err != nil {
		return err
	}

	excluded.Append(ranked.ToExcluded())

	if err = excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile))

	ranked.Exclude(profile.ListingIDField, excluded.IDs())
	return nil
}

// matchAll ranks the listings for every candidate of the candidates file in
// parallel and logs the top results per candidate. Filters named in disabled
// are skipped for every candidate.
func matchAll(ctx context.Context, logger *zap.Logger, config *Config, store credentials.Store, listings *profile.Listings, disabled []string) error {
	if strings.TrimSpace(config.Candidates) == "" {
		return errors.New("candidates file is required (--candidates or the 'candidates' key)")
	}

	candidates, err := profile.LoadCandidates(config.Candidates)
	if err != nil {
		return err
	}

	requests := make([]ranking.Request, 0, len(candidates))
	for _, c := range candidates {
		merged, err := withCredentials(ctx, store, c)
		if err != nil {
			return err
		}

		filtered := &profile.Listings{Items: append([]*profile.Listing(nil), listings.Items...)}
		deps := filtering.Deps{Logger: withProfile(logger, c.ID), Candidate: matching.Prepare(merged)}
		filtered, err = filtering.Run(ctx, filterConfig(config), deps, newFilters(disabled), filtered)
		if err != nil {
			return fmt.Errorf("filtering listings for %s: %w", c.ID, err)
		}

		requests = append(requests, ranking.Request{Candidate: merged, Listings: filtered.Items, Limit: config.Match.Limit})
	}

	results, err := ranking.RankBatch(ctx, requests, config.Match.Workers)
	if err != nil {
		return err
	}

	for i, scored := range results {
		logRanked(withProfile(logger, requests[i].Candidate.ID), scored)
	}

	logger.Info("ranked listings for all candidates", zap.Int("candidates", len(candidates)))
	return nil
}
