package matching

import (
	"strings"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/profile"
)

const literalReasoning = "literal mention in profile text"

// substringCandidates proposes one candidate per element whose value occurs in the profile corpus.
// There is no alias table and no cross-branch rule here.
func substringCandidates(p *profile.Profile, elements []background.SearchElement) []ai.Candidate {
	corpus := p.Corpus()
	if corpus == "" {
		return []ai.Candidate{}
	}

	candidates := make([]ai.Candidate, 0, len(elements))
	for _, element := range elements {
		value := background.Normalize(element.Value)
		if value == "" || !strings.Contains(corpus, value) {
			continue
		}
		confidence := 1.0
		candidates = append(candidates, ai.Candidate{
			Category:       string(element.Category),
			FoundInProfile: value,
			MatchesElement: element.Display,
			Points:         float64(element.Weight),
			Confidence:     &confidence,
			Reasoning:      literalReasoning,
		})
	}
	return candidates
}
