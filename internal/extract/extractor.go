// Package extract derives a user's Background from resume text.
package extract

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/document"
)

// Options tune strategy selection for one derivation.
type Options struct {
	PreferStructured bool
}

// Extractor picks between the structured strategy and the pattern strategy.
type Extractor struct {
	structured ai.Extractor
	patterns   *PatternExtractor
	logger     *zap.Logger
}

// New builds an Extractor. structured may be nil, in which case only patterns run.
func New(structured ai.Extractor, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		structured: structured,
		patterns:   NewPatternExtractor(),
		logger:     logger,
	}
}

// Derive never fails. A structured failure falls back to patterns without surfacing the error.
func (e *Extractor) Derive(ctx context.Context, text string, opts Options) *background.Background {
	if opts.PreferStructured && e.structured != nil {
		extraction, err := e.structured.Extract(ctx, text)
		switch {
		case err == nil && extraction != nil:
			years := extraction.YearsExperience
			if years == 0 {
				years = e.patternYears(ctx, text)
			}
			bg := background.New(background.MethodStructured, years, extraction.Hits)
			e.logger.Info("background extracted",
				zap.String("method", bg.Method),
				zap.Int("hits", len(extraction.Hits)),
				zap.Int("elements", len(bg.SearchElements)),
			)
			return bg
		case errors.Is(err, ai.ErrUnavailable):
			e.logger.Debug("structured extraction unavailable, using patterns")
		default:
			e.logger.Warn("structured extraction failed, using patterns", zap.Error(err))
		}
	}

	extraction, _ := e.patterns.Extract(ctx, text)
	bg := background.New(background.MethodPattern, extraction.YearsExperience, extraction.Hits)
	e.logger.Info("background extracted",
		zap.String("method", bg.Method),
		zap.Int("hits", len(extraction.Hits)),
		zap.Int("elements", len(bg.SearchElements)),
	)
	return bg
}

// FromDocument decodes a resume and derives its Background.
// Only a *document.DocumentFormatError is returned.
func (e *Extractor) FromDocument(ctx context.Context, data []byte, kind document.Kind, opts Options) (*background.Background, error) {
	text, err := document.ExtractText(data, kind)
	if err != nil {
		return nil, err
	}
	return e.Derive(ctx, text, opts), nil
}

func (e *Extractor) patternYears(ctx context.Context, text string) int {
	extraction, _ := e.patterns.Extract(ctx, text)
	return extraction.YearsExperience
}
