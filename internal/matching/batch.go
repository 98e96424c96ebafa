package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/profile"
)

// DefaultParallel bounds batch workers when the caller passes a non-positive limit.
const DefaultParallel = 4

// EvaluateBatch scores every profile against the same elements.
// Results are aligned with profiles by index. A failed item carries Error and never aborts its siblings.
func (e *Engine) EvaluateBatch(ctx context.Context, profiles []*profile.Profile, elements []background.SearchElement, maxParallel int) []*MatchResult {
	results := make([]*MatchResult, len(profiles))
	if len(profiles) == 0 {
		return results
	}
	if maxParallel <= 0 {
		maxParallel = DefaultParallel
	}

	var group errgroup.Group
	group.SetLimit(maxParallel)

	for i, p := range profiles {
		group.Go(func() error {
			results[i] = e.evaluateItem(ctx, i, p, elements)
			return nil
		})
	}

	_ = group.Wait()

	e.logger.Info("batch scored",
		zap.Int("profiles", len(profiles)),
		zap.Int("max_parallel", maxParallel),
	)

	return results
}

func (e *Engine) evaluateItem(ctx context.Context, index int, p *profile.Profile, elements []background.SearchElement) (result *MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("batch item panicked", zap.Int("index", index), zap.Any("panic", r))
			result = failed(fmt.Errorf("evaluate profile %d: panic: %v", index, r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(fmt.Errorf("evaluate profile %d: %w", index, err))
	}
	if err := p.Validate(); err != nil {
		e.logger.Warn("skipping invalid profile", zap.Int("index", index), zap.Error(err))
		return failed(fmt.Errorf("evaluate profile %d: %w", index, err))
	}

	return e.Match(ctx, p, elements)
}
