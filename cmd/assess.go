package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/assessment"
	"github.com/spigell/talentmatch/internal/catalog"
	"github.com/spigell/talentmatch/internal/credentials"
	"github.com/spigell/talentmatch/internal/profile"
	"github.com/spigell/talentmatch/internal/skills"
)

const (
	PromptRetake       = "Retake this assessment"
	PromptAnotherSkill = "Assess another skill"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Take a skill assessment and record the validated skill on pass",
	Run: func(cmd *cobra.Command, _ []string) {
		assess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().String("profile-id", "", "profile id to record credentials for. Default is the id of the --profile file.")
	assessCmd.Flags().StringP("skill", "s", "", "skill to assess. Asked interactively when unset.")
}

func assess(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()

	profileID, err := resolveProfileID(cmd, config)
	if err != nil {
		logger.Fatal("resolving profile", zap.Error(err))
	}

	cat, err := loadCatalog(config)
	if err != nil {
		logger.Fatal("loading assessment catalog", zap.Error(err))
	}

	store := openStore(config, logger)
	defer closeStore(store, logger)

	if credentials.BackendOf(config.Credentials) == credentials.BackendMemory {
		logger.Warn("validated skills are kept in memory and lost on exit",
			zap.String("hint", "set credentials.backend to file or redis"),
		)
	}

	logger = withProfile(logger, profileID)
	session := assessment.NewSession(cat, credentials.Sink(ctx, store, profileID, logger), logger)

	skill := skills.Name(cmd.Flag("skill").Value.String())
	if skill.Key() != "" && !cat.Has(skill) {
		logger.Fatal("starting assessment",
			zap.Error(fmt.Errorf("%s: %w", skill, assessment.ErrUnknownSkill)),
			zap.Any("assessable skills", cat.Skills()),
		)
	}

	for {
		if skill.Key() == "" {
			skill, err = selectSkill(cat)
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		ok, err := session.SelectSkill(skill)
		if err != nil {
			logger.Fatal("starting assessment", zap.Error(err))
		}
		if !ok {
			logger.Warn("no assessment available for skill",
				zap.String("skill", skill.String()),
				zap.Any("assessable skills", cat.Skills()),
			)
			skill = ""
			continue
		}

		if err := runQuestions(session); err != nil {
			if session.State() != assessment.Completed {
				logger.Fatal("exiting", zap.Error(err))
			}
			logger.Error("recording validated skill", zap.Error(err))
		}

		result, err := session.Result()
		if err != nil {
			logger.Fatal("reading assessment result", zap.Error(err))
		}

		logger.Info("assessment result",
			zap.String("skill", result.Skill.String()),
			zap.Int("correct", result.Correct),
			zap.Int("total", result.Total),
			zap.String("percentage", fmt.Sprintf("%.0f%%", result.Percentage())),
			zap.Bool("passed", result.Passed),
		)

		next := promptui.Select{
			Label: "What next?",
			Items: []string{PromptRetake, PromptAnotherSkill, PromptExit},
		}
		_, action, err := next.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptRetake:
			skill = result.Skill
		case PromptAnotherSkill:
			skill = ""
		default:
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		}

		session = session.Retake()
	}
}

func resolveProfileID(cmd *cobra.Command, config *Config) (string, error) {
	if id := strings.TrimSpace(cmd.Flag("profile-id").Value.String()); id != "" {
		return id, nil
	}

	if strings.TrimSpace(config.Profile) == "" {
		return "", errors.New("either --profile-id or a candidate profile (--profile) is required")
	}

	candidate, err := profile.LoadCandidate(config.Profile)
	if err != nil {
		return "", err
	}
	return candidate.ID, nil
}

func selectSkill(cat *catalog.Catalog) (skills.Name, error) {
	available := cat.Skills()
	items := make([]string, 0, len(available))
	for _, s := range available {
		items = append(items, s.String())
	}

	prompt := promptui.Select{
		Label: "Choose a skill to assess",
		Items: items,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return available[i], nil
}

// runQuestions asks every question of an in-progress session. An error
// returned with the session completed comes from recording a passed skill.
func runQuestions(session *assessment.Session) error {
	for session.State() == assessment.InProgress {
		q, err := session.CurrentQuestion()
		if err != nil {
			return err
		}

		current, total := session.Progress()
		prompt := promptui.Select{
			Label: fmt.Sprintf("[%d/%d] %s", current+1, total, q.Prompt),
			Items: q.Options,
		}
		if previous, ok := session.Answer(); ok {
			prompt.CursorPos = previous
		}

		option, _, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := session.RecordAnswer(option); err != nil {
			return err
		}
		if err := session.Advance(); err != nil {
			return err
		}
	}

	return nil
}
