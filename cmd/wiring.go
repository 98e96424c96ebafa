package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/ai/gemini"
	"github.com/spigell/networkiq/internal/extract"
	"github.com/spigell/networkiq/internal/logger"
	"github.com/spigell/networkiq/internal/matching"
	"github.com/spigell/networkiq/internal/messaging"
	"github.com/spigell/networkiq/internal/secrets"
	"github.com/spigell/networkiq/internal/store"
)

// services bundles everything a command needs. AI-backed members may be nil.
type services struct {
	config    *Config
	logger    *zap.Logger
	store     store.Store
	extractor *extract.Extractor
	engine    *matching.Engine
	messages  *messaging.Generator
}

func setup(ctx context.Context) *services {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("version", version), zap.String("user", config.User))

	var (
		structured ai.Extractor
		primary    ai.Matcher
		writer     ai.MessageWriter
	)

	generator, err := newGenerator(ctx, config.AI, logger)
	switch {
	case err == nil && generator != nil:
		structured = gemini.NewExtractor(generator, config.AI.Gemini.MaxLogLength, aiLogger(logger, generator))
		primary = gemini.NewMatcher(generator, config.AI.Gemini.MaxLogLength, aiLogger(logger, generator))
		writer = gemini.NewMessageWriter(generator, config.AI.Gemini.MaxLogLength, aiLogger(logger, generator))
	case errors.Is(err, secrets.ErrNotConfigured):
		logger.Info("gemini api key is not configured; using deterministic strategies",
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file"),
		)
	case err != nil:
		logger.Warn("gemini is unavailable; using deterministic strategies", zap.Error(err))
	}

	return &services{
		config:    config,
		logger:    logger,
		store:     store.NewFile(config.Store.Path),
		extractor: extract.New(structured, logger),
		engine:    matching.NewEngine(primary, config.Matching.Timeout, logger),
		messages:  messaging.New(writer, logger),
	}
}

// newGenerator returns nil without an error when AI is disabled.
func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Generator, error) {
	if cfg == nil || !cfg.Enabled || cfg.Gemini == nil {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
		zap.Float64("ai_requests_per_second", cfg.Gemini.RequestsPerSecond),
	)

	return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, cfg.Gemini.RequestsPerSecond, genLogger)
}

func aiLogger(log *zap.Logger, generator *gemini.Generator) *zap.Logger {
	return logger.WithCommonFields(log, "gemini", generator.Model())
}
