package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Score one profile and draft an outreach message for it",
	Run: func(cmd *cobra.Command, _ []string) {
		runMessage(cmd)
	},
}

func init() {
	rootCmd.AddCommand(messageCmd)

	messageCmd.Flags().StringP("profile", "p", "", "profile json file")
	messageCmd.MarkFlagRequired("profile")
}

func runMessage(cmd *cobra.Command) {
	ctx := context.Background()
	svc := setup(ctx)

	path, _ := cmd.Flags().GetString("profile")

	elements := loadElements(ctx, svc)
	profiles := loadProfiles([]string{path}, svc.logger)
	if len(profiles) != 1 {
		svc.logger.Fatal("message expects exactly one profile", zap.Int("count", len(profiles)))
	}

	p := profiles[0]
	if err := p.Validate(); err != nil {
		svc.logger.Fatal("invalid profile", zap.Error(err))
	}

	outcome := svc.engine.Evaluate(ctx, p, elements)
	svc.logger.Info("profile scored",
		zap.String("strategy", string(outcome.Strategy)),
		zap.Int("score", outcome.Result.Score),
		zap.String("tier", string(outcome.Result.Tier)),
	)

	draft(ctx, svc, p, outcome.Result, elements)
}
