package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/logger"
	"github.com/spigell/networkiq/internal/profile"
)

// Outcome records which strategy produced a result and, for a fallback, why.
type Outcome struct {
	Strategy Strategy
	Result   *MatchResult
	// Cause is nil for a primary outcome and for a fallback chosen because no primary is configured.
	Cause error
}

// Engine evaluates profiles with the primary matcher and falls back to substring matching.
// It keeps no state between calls.
type Engine struct {
	primary ai.Matcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewEngine builds an engine. primary may be nil; timeout <= 0 disables the per-attempt bound.
func NewEngine(primary ai.Matcher, timeout time.Duration, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{primary: primary, timeout: timeout, logger: log}
}

// Match evaluates one profile and returns only the result.
func (e *Engine) Match(ctx context.Context, p *profile.Profile, elements []background.SearchElement) *MatchResult {
	return e.Evaluate(ctx, p, elements).Result
}

// Evaluate never fails: a primary failure of any kind moves straight to the fallback.
func (e *Engine) Evaluate(ctx context.Context, p *profile.Profile, elements []background.SearchElement) Outcome {
	log, _ := logger.WithRequestID(e.logger)
	log = log.With(zap.Int("elements", len(elements)))

	if p == nil {
		p = &profile.Profile{}
	}

	if len(elements) == 0 {
		log.Debug("no search elements; returning empty result")
		return Outcome{Strategy: StrategyFallback, Result: newResult(StrategyFallback, nil)}
	}

	var cause error
	if e.primary != nil {
		assessment, err := e.attempt(ctx, p, elements)
		if err == nil {
			result := newResult(StrategyPrimary, validate(log, assessment.Candidates, elements))
			result.Insights = nonNil(assessment.Insights)
			result.HiddenConnections = nonNil(assessment.HiddenConnections)
			result.Recommendation = assessment.Recommendation
			e.logResult(log, result, len(assessment.Candidates))
			return Outcome{Strategy: StrategyPrimary, Result: result}
		}

		cause = err
		if errors.Is(err, ai.ErrUnavailable) {
			log.Debug("primary matcher unavailable")
		} else {
			log.Warn("primary matcher failed; using substring fallback", zap.Error(err))
		}
	}

	candidates := substringCandidates(p, elements)
	result := newResult(StrategyFallback, validate(log, candidates, elements))
	e.logResult(log, result, len(candidates))

	if errors.Is(cause, ai.ErrUnavailable) {
		cause = nil
	}
	return Outcome{Strategy: StrategyFallback, Result: result, Cause: cause}
}

func (e *Engine) attempt(ctx context.Context, p *profile.Profile, elements []background.SearchElement) (*ai.Assessment, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	assessment, err := e.primary.Evaluate(ctx, p, elements)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, fmt.Errorf("primary matcher returned no assessment")
	}
	return assessment, nil
}

// logResult never includes profile text.
func (e *Engine) logResult(log *zap.Logger, result *MatchResult, candidates int) {
	log.Info("profile scored",
		zap.String("strategy", string(result.Strategy)),
		zap.Int("candidates", candidates),
		zap.Int("matches", len(result.Matches)),
		zap.Int("score", result.Score),
		zap.String("tier", string(result.Tier)),
	)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
