package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/matching"
	"github.com/spigell/networkiq/internal/profile"
	"github.com/spigell/networkiq/internal/store"
)

const (
	PromptDone       = "Done"
	PromptDumpScores = "Print scores as json"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score profiles against your saved background",
	Run: func(cmd *cobra.Command, _ []string) {
		runScore(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringArrayP("profile", "p", nil, "profile json file holding one profile or a list; repeatable")
	scoreCmd.Flags().IntP("parallel", "n", 0, "maximum profiles scored at once (default from matching.max-parallel)")
	scoreCmd.Flags().BoolP("auto-approve", "y", false, "print results and exit without the interactive menu")

	scoreCmd.MarkFlagRequired("profile")
}

// scored pairs a profile with its result for display.
type scored struct {
	Profile *profile.Profile      `json:"profile"`
	Result  *matching.MatchResult `json:"result"`
}

func runScore(cmd *cobra.Command) {
	ctx := context.Background()
	svc := setup(ctx)
	logger := svc.logger

	paths, _ := cmd.Flags().GetStringArray("profile")
	parallel, _ := cmd.Flags().GetInt("parallel")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	if parallel <= 0 {
		parallel = svc.config.Matching.MaxParallel
	}

	elements := loadElements(ctx, svc)
	profiles := loadProfiles(paths, logger)

	results := svc.engine.EvaluateBatch(ctx, profiles, elements, parallel)

	entries := make([]scored, 0, len(results))
	for i, result := range results {
		entries = append(entries, scored{Profile: profiles[i], Result: result})
		if result.Error == "" {
			if _, err := store.IncrementUsage(ctx, svc.store, svc.config.User, store.UsageScore, time.Now()); err != nil {
				logger.Warn("recording usage", zap.Error(err))
			}
		}
	}

	if autoApprove {
		printJSON(entries)
		return
	}

	for {
		items := make([]string, 0, len(entries)+2)
		for i, entry := range entries {
			items = append(items, entryLabel(i, entry))
		}
		items = append(items, PromptDumpScores, PromptDone)

		selectPrompt := promptui.Select{
			Label: "Choose a profile to draft a message for and press ENTER",
			Items: items,
			Size:  10,
		}

		index, selected, err := selectPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		switch selected {
		case PromptDone:
			return
		case PromptDumpScores:
			printJSON(entries)
		default:
			entry := entries[index]
			if entry.Result.Error != "" {
				logger.Warn("profile was not scored", zap.String("error", entry.Result.Error))
				continue
			}
			draft(ctx, svc, entry.Profile, entry.Result, elements)
		}
	}
}

func entryLabel(i int, entry scored) string {
	name := "unknown"
	if entry.Profile != nil {
		name = entry.Profile.Label()
	}
	if entry.Result.Error != "" {
		return fmt.Sprintf("%d. %s / error: %s", i+1, name, entry.Result.Error)
	}

	top := make([]string, 0, 3)
	for j, match := range entry.Result.Matches {
		if j == 3 {
			break
		}
		top = append(top, match.MatchesElement)
	}
	return fmt.Sprintf("%d. %s / %d (%s) / %s", i+1, name, entry.Result.Score, entry.Result.Tier, strings.Join(top, ", "))
}

func draft(ctx context.Context, svc *services, p *profile.Profile, result *matching.MatchResult, elements []background.SearchElement) {
	message := svc.messages.Generate(ctx, p, result, elements)
	if _, err := store.IncrementUsage(ctx, svc.store, svc.config.User, store.UsageMessage, time.Now()); err != nil {
		svc.logger.Warn("recording usage", zap.Error(err))
	}

	svc.logger.Info("message drafted",
		zap.String("strategy", message.Strategy),
		zap.Int("length", len([]rune(message.Text))),
	)
	fmt.Println(message.Text)
}

func loadElements(ctx context.Context, svc *services) []background.SearchElement {
	bg, err := store.LoadBackground(ctx, svc.store, svc.config.User)
	if errors.Is(err, store.ErrNotFound) {
		svc.logger.Fatal("no background saved for user",
			zap.String("user", svc.config.User),
			zap.String("hint", "run the extract command with your resume first"),
		)
	}
	if err != nil {
		svc.logger.Fatal("loading background", zap.Error(err))
	}
	return bg.SearchElements
}

func loadProfiles(paths []string, logger *zap.Logger) []*profile.Profile {
	var profiles []*profile.Profile
	for _, path := range paths {
		loaded, err := profile.FromFile(path)
		if err != nil {
			logger.Fatal("reading profiles", zap.String("path", path), zap.Error(err))
		}
		profiles = append(profiles, loaded...)
	}
	logger.Info("profiles loaded", zap.Int("count", len(profiles)))
	return profiles
}

func printJSON(v any) {
	// do not bother error since every value printed here is plain data
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))
}
