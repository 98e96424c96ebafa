package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
)

const (
	vocabularyConfidence  = 1.0
	roleKeywordConfidence = 0.8
	degreeConfidence      = 0.7
	institutionConfidence = 0.8
	branchConfidence      = 0.8
	genericServiceConf    = 0.6
	companyLineConfidence = 0.4
	stateConfidence       = 0.8
	cityConfidence        = 0.6
	achievementConfidence = 0.5
	maxAchievements       = 3
	maxAchievementRunes   = 80
)

var (
	institutionRe = regexp.MustCompile(`\b(?:[a-z][a-z&.'-]*\s+){0,4}(?:university|college|institute|academy)(?:\s+of(?:\s+[a-z][a-z&.'-]*){1,3})?`)
	degreeRe      = regexp.MustCompile(`\b(mba|m\.b\.a\.|ph\.?d\.?|doctorate)(?:$|[^a-z])`)
	companyAtRe   = regexp.MustCompile(`\bat\s+([A-Z][A-Za-z0-9&.\-]*(?:\s+[A-Z][A-Za-z0-9&.\-]*){0,3})`)
	companyBarRe  = regexp.MustCompile(`^\s*([A-Z][A-Za-z0-9&.]+(?:\s+[A-Z][A-Za-z0-9&.]+){0,3})\s*\|`)
	cityStateRe   = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)?),\s*(A[KLRZ]|C[AOT]|D[CE]|FL|GA|HI|I[ADLN]|K[SY]|LA|M[ADEINOST]|N[CDEHJMVY]|O[HKR]|PA|RI|S[CD]|T[NX]|UT|V[AT]|W[AIVY])\b`)
	yearRe        = regexp.MustCompile(`\b(19[5-9]\d|20\d{2})\b`)
	experienceRe  = regexp.MustCompile(`(\d{1,2})\+?\s*years?\s*(?:of\s*)?(?:professional\s+)?experience`)
)

// institutionFiller is dropped from the front of an institution match.
var institutionFiller = map[string]bool{
	"the": true, "at": true, "from": true, "in": true, "of": true, "and": true, "a": true, "an": true,
	"graduated": true, "graduate": true, "attended": true, "studied": true, "student": true,
	"alumni": true, "alumnus": true, "alumna": true, "degree": true, "bachelor": true,
	"bachelors": true, "bachelor's": true, "master": true, "masters": true, "master's": true,
	"bs": true, "ba": true, "ms": true, "ma": true, "mba": true, "phd": true, "b.s.": true,
	"b.a.": true, "m.s.": true, "m.a.": true, "science": true, "arts": true,
}

// companyStopwords are capitalized words the line patterns pick up that are not employers.
var companyStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "our": true, "present": true, "current": true,
	"january": true, "february": true, "march": true, "april": true, "may": true, "june": true,
	"july": true, "august": true, "september": true, "october": true, "november": true,
	"december": true, "education": true, "experience": true, "skills": true, "summary": true,
}

// PatternExtractor is the deterministic strategy: regexes plus fixed vocabularies.
type PatternExtractor struct {
	now func() time.Time
}

func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{now: time.Now}
}

// Extract never fails; an empty hit list is a valid result.
func (p *PatternExtractor) Extract(_ context.Context, text string) (*ai.Extraction, error) {
	lower := strings.ToLower(text)
	lines := splitLines(text)

	var hits []background.Hit
	hits = append(hits, detectInstitutions(lines)...)
	hits = append(hits, detectDegrees(lower)...)
	hits = append(hits, detectMilitary(lower)...)
	hits = append(hits, detectVocabulary(lower, companies, background.CategoryCompany, vocabularyConfidence)...)
	hits = append(hits, detectCompanyLines(lines)...)
	hits = append(hits, detectVocabulary(lower, skills, background.CategorySkill, vocabularyConfidence)...)
	hits = append(hits, detectVocabulary(lower, certifications, background.CategoryCertification, vocabularyConfidence)...)
	hits = append(hits, detectVocabulary(lower, industryKeywords, background.CategoryKeyword, vocabularyConfidence)...)
	hits = append(hits, detectVocabulary(lower, roleKeywords, background.CategoryKeyword, roleKeywordConfidence)...)
	hits = append(hits, detectLocations(lines)...)
	hits = append(hits, detectAchievements(lines)...)

	if hits == nil {
		hits = []background.Hit{}
	}

	return &ai.Extraction{
		Hits:            hits,
		YearsExperience: p.estimateExperience(lower),
	}, nil
}

func splitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' || r == '•' })
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func detectVocabulary(lower string, terms []term, category background.Category, confidence float64) []background.Hit {
	var hits []background.Hit
	for _, t := range terms {
		if t.in(lower) {
			hits = append(hits, background.Hit{Category: category, Value: t.value, Confidence: confidence})
		}
	}
	return hits
}

func detectInstitutions(lines []string) []background.Hit {
	var hits []background.Hit
	for _, line := range lines {
		for _, match := range institutionRe.FindAllString(strings.ToLower(line), -1) {
			name := trimFiller(match)
			if name == "" || !strings.Contains(name, " ") {
				continue
			}
			if _, academy := background.Academy(name); academy {
				continue
			}
			hits = append(hits, background.Hit{
				Category:   background.CategoryEducation,
				Value:      name,
				Confidence: institutionConfidence,
			})
		}
	}
	return hits
}

func trimFiller(match string) string {
	words := strings.Fields(match)
	for len(words) > 0 && institutionFiller[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func detectDegrees(lower string) []background.Hit {
	var hits []background.Hit
	for _, match := range degreeRe.FindAllStringSubmatch(lower, -1) {
		value := strings.ReplaceAll(match[1], ".", "")
		if value == "doctorate" {
			value = "phd"
		}
		hits = append(hits, background.Hit{Category: background.CategoryKeyword, Value: value, Confidence: degreeConfidence})
	}
	return hits
}

// detectMilitary scans for service records. Any negation marker suppresses every military hit.
func detectMilitary(lower string) []background.Hit {
	for _, negation := range militaryNegations {
		if strings.Contains(lower, negation) {
			return nil
		}
	}

	var hits []background.Hit

	for _, academy := range academies {
		if academy.in(lower) {
			hits = append(hits, background.Hit{
				Category:   background.CategoryMilitary,
				Value:      academy.value,
				Academy:    true,
				Confidence: vocabularyConfidence,
			})
		}
	}
	if len(hits) > 0 {
		return hits
	}

	for _, branch := range militaryBranches {
		if branch.in(lower) {
			hits = append(hits, background.Hit{Category: background.CategoryMilitary, Value: branch.value, Confidence: branchConfidence})
		}
	}
	if len(hits) > 0 {
		return hits
	}

	for _, indicator := range serviceIndicators {
		if indicator.in(lower) {
			return []background.Hit{{Category: background.CategoryMilitary, Value: "military", Confidence: genericServiceConf}}
		}
	}

	return nil
}

func detectCompanyLines(lines []string) []background.Hit {
	var hits []background.Hit
	for _, line := range lines {
		var names []string
		for _, match := range companyAtRe.FindAllStringSubmatch(line, -1) {
			names = append(names, match[1])
		}
		if match := companyBarRe.FindStringSubmatch(line); match != nil {
			names = append(names, match[1])
		}

		for _, name := range names {
			name = strings.TrimRight(strings.TrimSpace(name), ".-&")
			if !plausibleCompany(name) {
				continue
			}
			hits = append(hits, background.Hit{
				Category:   background.CategoryCompany,
				Value:      name,
				Label:      name,
				Confidence: companyLineConfidence,
			})
		}
	}
	return hits
}

func plausibleCompany(name string) bool {
	if len(name) <= 2 {
		return false
	}
	lower := strings.ToLower(name)
	if companyStopwords[strings.Fields(lower)[0]] {
		return false
	}
	return !institutionRe.MatchString(lower)
}

func detectLocations(lines []string) []background.Hit {
	var (
		hits  []background.Hit
		found []string
	)

	for _, line := range lines {
		lower := strings.ToLower(line)
		if !institutionRe.MatchString(lower) {
			for _, state := range states {
				if state.in(lower) {
					found = append(found, state.value)
				}
			}
		}

		for _, match := range cityStateRe.FindAllStringSubmatch(line, -1) {
			hits = append(hits, background.Hit{
				Category:   background.CategoryLocation,
				Value:      match[1],
				Label:      match[1] + ", " + match[2],
				Confidence: cityConfidence,
			})
		}
	}

	for _, state := range found {
		if containedInOther(state, found) {
			continue
		}
		hits = append(hits, background.Hit{Category: background.CategoryLocation, Value: state, Confidence: stateConfidence})
	}

	return hits
}

// containedInOther reports whether value is part of a longer name in the list, as virginia is in west virginia.
func containedInOther(value string, all []string) bool {
	for _, other := range all {
		if other != value && strings.Contains(other, value) {
			return true
		}
	}
	return false
}

func detectAchievements(lines []string) []background.Hit {
	var hits []background.Hit
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, marker := range achievementMarkers {
			if !strings.Contains(lower, marker) {
				continue
			}
			value := strings.Trim(line, " -*·")
			if runes := []rune(value); len(runes) > maxAchievementRunes {
				value = string(runes[:maxAchievementRunes])
			}
			hits = append(hits, background.Hit{
				Category:   background.CategoryAchievement,
				Value:      value,
				Confidence: achievementConfidence,
			})
			break
		}
		if len(hits) == maxAchievements {
			break
		}
	}
	return hits
}

// estimateExperience prefers an explicit statement and falls back to the span of years mentioned.
func (p *PatternExtractor) estimateExperience(lower string) int {
	if match := experienceRe.FindStringSubmatch(lower); match != nil {
		if years, err := strconv.Atoi(match[1]); err == nil {
			return years
		}
	}

	current := p.now().Year()
	lowest, highest := 0, 0
	for _, match := range yearRe.FindAllString(lower, -1) {
		year, err := strconv.Atoi(match)
		if err != nil || year > current {
			continue
		}
		if lowest == 0 || year < lowest {
			lowest = year
		}
		if year > highest {
			highest = year
		}
	}

	if strings.Contains(lower, "present") && lowest != 0 {
		highest = current
	}

	return highest - lowest
}
