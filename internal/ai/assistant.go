package ai

import (
	"context"
	"errors"

	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/profile"
)

// ErrUnavailable means no generation backend is configured.
// Callers treat it as routine and use their deterministic strategy.
var ErrUnavailable = errors.New("generation backend is not configured")

// Candidate is one unvalidated match proposed by a generation backend.
// Confidence is nil when the backend omitted it.
type Candidate struct {
	Category       string   `mapstructure:"category" json:"category"`
	FoundInProfile string   `mapstructure:"found_in_profile" json:"found_in_profile"`
	MatchesElement string   `mapstructure:"matches_element" json:"matches_element"`
	Points         float64  `mapstructure:"points" json:"points"`
	Confidence     *float64 `mapstructure:"confidence" json:"confidence,omitempty"`
	Reasoning      string   `mapstructure:"reasoning" json:"reasoning"`
}

// Match is validated evidence linking a profile to one search element.
type Match struct {
	Category       background.Category `json:"category"`
	FoundInProfile string              `json:"found_in_profile"`
	MatchesElement string              `json:"matches_element"`
	Points         int                 `json:"points"`
	Confidence     float64             `json:"confidence"`
	Reasoning      string              `json:"reasoning,omitempty"`
}

// Assessment is the parsed output of a primary matching call.
type Assessment struct {
	Candidates        []Candidate `mapstructure:"matches"`
	Insights          []string    `mapstructure:"insights"`
	HiddenConnections []string    `mapstructure:"hidden_connections"`
	Recommendation    string      `mapstructure:"recommendation"`
	Raw               string      `mapstructure:"-"`
}

type Matcher interface {
	Evaluate(ctx context.Context, p *profile.Profile, elements []background.SearchElement) (*Assessment, error)
}

// Extraction is the parsed output of a structured resume extraction call.
type Extraction struct {
	Hits            []background.Hit
	YearsExperience int
}

type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// MessageRequest carries everything an outreach message may reference.
type MessageRequest struct {
	Profile  *profile.Profile
	Matches  []Match
	Insights []string
	Elements []background.SearchElement
}

type MessageWriter interface {
	Write(ctx context.Context, req *MessageRequest) (string, error)
}
