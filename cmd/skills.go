package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List assessable skills and the validated skills of the candidate profile",
	Run: func(cmd *cobra.Command, _ []string) {
		listSkills(cmd)
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}

func listSkills(_ *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()

	cat, err := loadCatalog(config)
	if err != nil {
		logger.Fatal("loading assessment catalog", zap.Error(err))
	}

	for _, skill := range cat.Skills() {
		logger.Info("assessable skill",
			zap.String("skill", skill.String()),
			zap.Int("questions", len(cat.QuestionsFor(skill))),
		)
	}

	if strings.TrimSpace(config.Profile) == "" {
		return
	}

	store := openStore(config, logger)
	defer closeStore(store, logger)

	candidate, err := loadProfile(ctx, config, store)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.Error(err))
	}

	validated := candidate.ValidatedSet()
	withProfile(logger, candidate.ID).Info("candidate skills",
		zap.Strings("skills", candidate.SkillSet().Names()),
		zap.Strings("validated_skills", validated.Names()),
	)

	var missing []string
	for _, skill := range cat.Skills() {
		if !validated.Contains(skill) {
			missing = append(missing, skill.String())
		}
	}
	if len(missing) > 0 {
		logger.Info("skills that can still be validated", zap.Strings("skills", missing))
	}
}
