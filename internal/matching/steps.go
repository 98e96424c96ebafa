package matching

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
)

const (
	// MinConfidence is the gate below which a match is discarded entirely.
	MinConfidence = 0.3
	// DefaultConfidence applies to candidates that omitted confidence and survived the sentinel check.
	DefaultConfidence = 0.8
)

// nullSentinels are whole-value markers meaning nothing was found.
var nullSentinels = map[string]bool{
	"":           true,
	"null":       true,
	"none":       true,
	"n/a":        true,
	"na":         true,
	"nil":        true,
	"-":          true,
	"not found":  true,
	"none found": true,
	"no match":   true,
	"unknown":    true,
}

// absencePhrases mark free text that admits nothing was found.
// Decorations background.Build puts around an element value.
var (
	displayPrefixes = []string{"alumni:", "former ", "both have ", "shared skill:", "also in ", "keyword:", "achievement:"}
	displaySuffixes = []string{" alumni", " veteran"}
)

var absencePhrases = []string{
	"no direct mention",
	"no mention",
	"not mentioned",
	"nothing states",
	"nothing stated",
	"no evidence",
	"no indication",
	"does not mention",
	"doesn't mention",
	"not found",
}

// Step describes one validation stage.
type Step struct {
	Initial   int
	Corrected int
	Dropped   int
	Left      int
}

type pending struct {
	match      ai.Match
	confidence *float64
}

type step interface {
	Name() string
	Apply(items []pending) ([]pending, Step)
}

// IsNullSentinel reports whether found text is a "nothing found" marker.
func IsNullSentinel(found string) bool {
	normalized := strings.Join(strings.Fields(strings.ToLower(found)), " ")
	normalized = strings.Trim(normalized, " .\"'`")
	if nullSentinels[normalized] {
		return true
	}
	for _, phrase := range absencePhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

type nullSentinelStep struct{}

func (nullSentinelStep) Name() string { return "null_sentinel" }

func (nullSentinelStep) Apply(items []pending) ([]pending, Step) {
	corrected := 0
	for i := range items {
		if !IsNullSentinel(items[i].match.FoundInProfile) {
			continue
		}
		if items[i].confidence == nil || *items[i].confidence != 0 {
			corrected++
		}
		zero := 0.0
		items[i].confidence = &zero
	}
	return items, Step{Initial: len(items), Corrected: corrected, Left: len(items)}
}

type defaultConfidenceStep struct{}

func (defaultConfidenceStep) Name() string { return "default_confidence" }

func (defaultConfidenceStep) Apply(items []pending) ([]pending, Step) {
	corrected := 0
	for i := range items {
		if items[i].confidence != nil {
			continue
		}
		value := DefaultConfidence
		items[i].confidence = &value
		corrected++
	}
	return items, Step{Initial: len(items), Corrected: corrected, Left: len(items)}
}

type confidenceGateStep struct{}

func (confidenceGateStep) Name() string { return "confidence_gate" }

func (confidenceGateStep) Apply(items []pending) ([]pending, Step) {
	initial := len(items)
	kept := items[:0]
	for _, item := range items {
		confidence := math.Min(1, *item.confidence)
		if confidence < MinConfidence || math.IsNaN(confidence) {
			continue
		}
		item.match.Confidence = confidence
		kept = append(kept, item)
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

// reconcileStep ties every match to an element the user actually has.
// Points come from the element weight; a match naming no such element is dropped.
type reconcileStep struct {
	byDisplay map[string]background.SearchElement
	byValue   map[string]background.SearchElement
	byBare    map[string]background.SearchElement
}

func newReconcileStep(elements []background.SearchElement) *reconcileStep {
	s := &reconcileStep{
		byDisplay: make(map[string]background.SearchElement, len(elements)),
		byValue:   make(map[string]background.SearchElement, len(elements)),
		byBare:    make(map[string]background.SearchElement, len(elements)),
	}
	for _, element := range elements {
		index(s.byDisplay, background.Normalize(element.Display), element)
		index(s.byValue, background.Normalize(element.Value), element)
		index(s.byBare, bare(element.Display), element)
	}
	return s
}

func index(m map[string]background.SearchElement, key string, element background.SearchElement) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = element
	}
}

// bare strips the display decoration so "Alumni: Stanford University" and
// "Stanford University" resolve to the same element.
func bare(name string) string {
	key := background.Normalize(name)
	for _, prefix := range displayPrefixes {
		if strings.HasPrefix(key, prefix) {
			key = strings.TrimPrefix(key, prefix)
			break
		}
	}
	for _, suffix := range displaySuffixes {
		if strings.HasSuffix(key, suffix) {
			key = strings.TrimSuffix(key, suffix)
			break
		}
	}
	return strings.TrimSpace(key)
}

func (s *reconcileStep) Name() string { return "reconcile_points" }

func (s *reconcileStep) resolve(name string) (background.SearchElement, bool) {
	key := background.Normalize(name)
	if element, ok := s.byDisplay[key]; ok {
		return element, true
	}
	if element, ok := s.byValue[key]; ok {
		return element, true
	}

	key = bare(name)
	if element, ok := s.byValue[key]; ok {
		return element, true
	}
	element, ok := s.byBare[key]
	return element, ok
}

func (s *reconcileStep) Apply(items []pending) ([]pending, Step) {
	initial := len(items)
	corrected := 0
	kept := items[:0]

	for _, item := range items {
		element, ok := s.resolve(item.match.MatchesElement)
		if !ok {
			continue
		}
		if item.match.Points != element.Weight || item.match.Category != element.Category {
			corrected++
		}
		item.match.Category = element.Category
		item.match.MatchesElement = element.Display
		item.match.Points = element.Weight
		kept = append(kept, item)
	}

	return kept, Step{Initial: initial, Corrected: corrected, Dropped: initial - len(kept), Left: len(kept)}
}

// dedupeStep keeps one match per matched element, preferring higher confidence.
type dedupeStep struct{}

func (dedupeStep) Name() string { return "dedupe" }

func (dedupeStep) Apply(items []pending) ([]pending, Step) {
	initial := len(items)
	index := make(map[string]int, len(items))
	kept := make([]pending, 0, len(items))

	for _, item := range items {
		key := string(item.match.Category) + "\x00" + background.Normalize(item.match.MatchesElement)
		if at, ok := index[key]; ok {
			if item.match.Confidence > kept[at].match.Confidence {
				kept[at] = item
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, item)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

// validate runs every candidate through the fixed step sequence and returns the surviving matches.
func validate(logger *zap.Logger, candidates []ai.Candidate, elements []background.SearchElement) []ai.Match {
	items := make([]pending, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, pending{
			match: ai.Match{
				Category:       background.Category(strings.ToLower(strings.TrimSpace(c.Category))),
				FoundInProfile: strings.TrimSpace(c.FoundInProfile),
				MatchesElement: strings.TrimSpace(c.MatchesElement),
				Points:         int(math.Round(c.Points)),
				Reasoning:      strings.TrimSpace(c.Reasoning),
			},
			confidence: c.Confidence,
		})
	}

	steps := []step{
		nullSentinelStep{},
		defaultConfidenceStep{},
		confidenceGateStep{},
		newReconcileStep(elements),
		dedupeStep{},
	}

	for _, s := range steps {
		var info Step
		items, info = s.Apply(items)
		logger.Debug("validation step",
			zap.String("name", s.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("corrected", info.Corrected),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	matches := make([]ai.Match, 0, len(items))
	for _, item := range items {
		matches = append(matches, item.match)
	}
	return matches
}
