package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/document"
	"github.com/spigell/networkiq/internal/extract"
	"github.com/spigell/networkiq/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract search elements from a resume and save them as your background",
	Run: func(cmd *cobra.Command, _ []string) {
		runExtract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("file", "f", "", "resume file (pdf, docx or txt)")
	extractCmd.Flags().StringP("kind", "k", "", "document kind; detected from the file name when unset")
	extractCmd.Flags().Bool("pattern-only", false, "skip structured extraction even when gemini is configured")

	extractCmd.MarkFlagRequired("file")
}

func runExtract(cmd *cobra.Command) {
	ctx := context.Background()
	svc := setup(ctx)
	logger := svc.logger

	path, _ := cmd.Flags().GetString("file")
	kindFlag, _ := cmd.Flags().GetString("kind")
	patternOnly, _ := cmd.Flags().GetBool("pattern-only")

	if kindFlag == "" {
		kindFlag = path
	}
	kind, err := document.ParseKind(kindFlag)
	if err != nil {
		logger.Fatal("detecting document kind", zap.Error(err), zap.String("hint", "pass --kind pdf|docx|txt"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	opts := extract.Options{PreferStructured: svc.config.Extraction.PreferStructured && !patternOnly}

	bg, err := svc.extractor.FromDocument(ctx, data, kind, opts)
	if err != nil {
		var formatErr *document.DocumentFormatError
		if errors.As(err, &formatErr) {
			logger.Fatal("resume could not be read", zap.String("kind", string(formatErr.Kind)), zap.Error(err))
		}
		logger.Fatal("extracting background", zap.Error(err))
	}

	if err := store.SaveBackground(ctx, svc.store, svc.config.User, bg); err != nil {
		logger.Fatal("saving background", zap.Error(err))
	}
	if _, err := store.IncrementUsage(ctx, svc.store, svc.config.User, store.UsageExtract, time.Now()); err != nil {
		logger.Warn("recording usage", zap.Error(err))
	}

	logger.Info("background saved",
		zap.String("user", svc.config.User),
		zap.String("method", bg.Method),
		zap.Int("search_elements", len(bg.SearchElements)),
		zap.Int("years_experience", bg.YearsExperience),
	)

	pretty, _ := json.MarshalIndent(bg, "", "  ")
	fmt.Println(string(pretty))
}
