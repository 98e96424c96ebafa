// Package matching scores a profile against a user's search elements.
package matching

import "github.com/spigell/networkiq/internal/ai"

// Tier is the coarse bucket derived from a score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

const (
	MaxScore        = 100
	highThreshold   = 40
	mediumThreshold = 20
)

// Strategy names the path that produced a result.
type Strategy string

const (
	StrategyPrimary  Strategy = "primary"
	StrategyFallback Strategy = "fallback"
)

// MatchResult is the outcome of one profile evaluation.
type MatchResult struct {
	Score             int        `json:"score"`
	Tier              Tier       `json:"tier"`
	Matches           []ai.Match `json:"matches"`
	Insights          []string   `json:"insights"`
	HiddenConnections []string   `json:"hidden_connections"`
	Recommendation    string     `json:"recommendation"`
	Strategy          Strategy   `json:"strategy,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// TierFor maps a score onto high (>= 40), medium (>= 20) or low.
func TierFor(score int) Tier {
	switch {
	case score >= highThreshold:
		return TierHigh
	case score >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Score sums match points and caps the total at MaxScore.
func Score(matches []ai.Match) int {
	total := 0
	for _, match := range matches {
		if match.Points > 0 {
			total += match.Points
		}
	}
	if total > MaxScore {
		return MaxScore
	}
	return total
}

func newResult(strategy Strategy, matches []ai.Match) *MatchResult {
	if matches == nil {
		matches = []ai.Match{}
	}
	score := Score(matches)
	return &MatchResult{
		Score:             score,
		Tier:              TierFor(score),
		Matches:           matches,
		Insights:          []string{},
		HiddenConnections: []string{},
		Strategy:          strategy,
	}
}

// failed is the placeholder result for a batch item that could not be evaluated.
func failed(err error) *MatchResult {
	result := newResult("", nil)
	result.Error = err.Error()
	return result
}
