package background

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxElements bounds the element list handed to matchers.
	MaxElements = 15
	// MaxSkills and MaxKeywords bound the noisier categories before weighting.
	MaxSkills   = 10
	MaxKeywords = 5
)

// Hit is one raw detection produced by an extraction strategy.
type Hit struct {
	Category   Category
	Value      string
	Label      string
	Academy    bool
	Confidence float64
}

// SearchElement is one weighted fact about the user used as a matching target.
type SearchElement struct {
	Category   Category `json:"category"`
	Value      string   `json:"value"`
	Display    string   `json:"display"`
	Weight     int      `json:"weight"`
	Confidence float64  `json:"confidence,omitempty"`
}

var academyDisplay = map[string]string{
	"usafa": "USAFA Alumni",
	"usma":  "West Point Alumni",
	"usna":  "Naval Academy Alumni",
	"uscga": "Coast Guard Academy Alumni",
	"usmma": "Merchant Marine Academy Alumni",
}

// Normalize folds a raw value into its matching form.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .,;:-|•")
}

// Weigh maps a detection confidence onto the category band.
func Weigh(c Category, confidence float64, academy bool) int {
	band := c.Band(academy)
	confidence = math.Max(0, math.Min(1, confidence))
	return band.Min + int(math.Round(float64(band.Max-band.Min)*confidence))
}

// Build turns raw hits into the bounded, weighted element list.
// The result is sorted by weight, highest first.
func Build(hits []Hit) []SearchElement {
	deduped := capCategories(Dedupe(hits))

	elements := make([]SearchElement, 0, len(deduped))
	for _, hit := range deduped {
		elements = append(elements, SearchElement{
			Category:   hit.Category,
			Value:      hit.Value,
			Display:    display(hit),
			Weight:     Weigh(hit.Category, hit.Confidence, hit.Academy),
			Confidence: hit.Confidence,
		})
	}

	Sort(elements)
	if len(elements) > MaxElements {
		elements = elements[:MaxElements]
	}
	return elements
}

// Sort orders elements by weight, then category priority, then value.
func Sort(elements []SearchElement) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Category.rank() != b.Category.rank() {
			return a.Category.rank() < b.Category.rank()
		}
		return a.Value < b.Value
	})
}

// Dedupe normalizes hits and merges case-insensitive duplicates,
// keeping the highest confidence seen for each category and value.
func Dedupe(hits []Hit) []Hit {
	index := make(map[string]int, len(hits))
	out := make([]Hit, 0, len(hits))

	for _, hit := range hits {
		if !hit.Category.Valid() {
			continue
		}
		hit.Value = Normalize(hit.Value)
		if hit.Value == "" {
			continue
		}
		hit.Label = strings.TrimSpace(hit.Label)

		key := string(hit.Category) + "\x00" + hit.Value
		pos, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, hit)
			continue
		}

		existing := &out[pos]
		existing.Academy = existing.Academy || hit.Academy
		if hit.Confidence > existing.Confidence {
			existing.Confidence = hit.Confidence
			if hit.Label != "" {
				existing.Label = hit.Label
			}
		}
		if existing.Label == "" {
			existing.Label = hit.Label
		}
	}

	return out
}

// capCategories keeps the most confident skills and keywords.
func capCategories(hits []Hit) []Hit {
	limits := map[Category]int{
		CategorySkill:   MaxSkills,
		CategoryKeyword: MaxKeywords,
	}

	ranked := make([]Hit, len(hits))
	copy(ranked, hits)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	counts := make(map[Category]int)
	keep := make(map[string]bool, len(ranked))
	for _, hit := range ranked {
		limit, limited := limits[hit.Category]
		if limited && counts[hit.Category] >= limit {
			continue
		}
		counts[hit.Category]++
		keep[string(hit.Category)+"\x00"+hit.Value] = true
	}

	out := make([]Hit, 0, len(keep))
	for _, hit := range hits {
		if keep[string(hit.Category)+"\x00"+hit.Value] {
			out = append(out, hit)
		}
	}
	return out
}

func display(hit Hit) string {
	name := hit.Label
	if name == "" {
		name = cases.Title(language.English).String(hit.Value)
	}

	switch hit.Category {
	case CategoryEducation:
		return "Alumni: " + name
	case CategoryCompany:
		return "Former " + name
	case CategoryMilitary:
		if label, ok := academyDisplay[hit.Value]; ok {
			return label
		}
		if hit.Academy {
			return name + " Alumni"
		}
		switch hit.Value {
		case "military", "veteran", "military service":
			return "Military Veteran"
		}
		return name + " Veteran"
	case CategoryCertification:
		if hit.Label == "" && len(hit.Value) <= 6 {
			name = strings.ToUpper(hit.Value)
		}
		return "Both have " + name
	case CategorySkill:
		return "Shared skill: " + labelOrValue(hit)
	case CategoryLocation:
		return "Also in " + name
	case CategoryKeyword:
		return "Keyword: " + labelOrValue(hit)
	case CategoryAchievement:
		return "Achievement: " + labelOrValue(hit)
	default:
		return fmt.Sprintf("%s: %s", hit.Category, hit.Value)
	}
}

func labelOrValue(hit Hit) string {
	if hit.Label != "" {
		return hit.Label
	}
	return hit.Value
}

// Group returns elements grouped by category in priority order.
// Categories without elements are omitted.
func Group(elements []SearchElement) []CategoryGroup {
	byCategory := make(map[Category][]SearchElement)
	for _, element := range elements {
		byCategory[element.Category] = append(byCategory[element.Category], element)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, category := range categoryOrder {
		if items := byCategory[category]; len(items) > 0 {
			groups = append(groups, CategoryGroup{Category: category, Elements: items})
		}
	}
	return groups
}

type CategoryGroup struct {
	Category Category
	Elements []SearchElement
}
