// Package background turns raw resume detections into the weighted
// search elements that profile matching runs against.
package background

import "time"

const (
	MethodPattern    = "pattern"
	MethodStructured = "structured"
)

// Background is the record persisted for a user after a resume upload.
// A new upload replaces it wholesale.
type Background struct {
	Companies       []string        `json:"companies"`
	Skills          []string        `json:"skills"`
	Education       []string        `json:"education"`
	Military        []string        `json:"military"`
	Certifications  []string        `json:"certifications"`
	Keywords        []string        `json:"keywords"`
	YearsExperience int             `json:"years_experience,omitempty"`
	Method          string          `json:"extraction_method"`
	SearchElements  []SearchElement `json:"search_elements"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// New summarizes hits into a Background.
func New(method string, yearsExperience int, hits []Hit) *Background {
	bg := &Background{
		Companies:       []string{},
		Skills:          []string{},
		Education:       []string{},
		Military:        []string{},
		Certifications:  []string{},
		Keywords:        []string{},
		YearsExperience: yearsExperience,
		Method:          method,
		SearchElements:  Build(hits),
		UpdatedAt:       time.Now().UTC(),
	}

	for _, hit := range Dedupe(hits) {
		switch hit.Category {
		case CategoryCompany:
			bg.Companies = append(bg.Companies, hit.Value)
		case CategorySkill:
			bg.Skills = append(bg.Skills, hit.Value)
		case CategoryEducation:
			bg.Education = append(bg.Education, hit.Value)
		case CategoryMilitary:
			bg.Military = append(bg.Military, hit.Value)
		case CategoryCertification:
			bg.Certifications = append(bg.Certifications, hit.Value)
		case CategoryKeyword:
			bg.Keywords = append(bg.Keywords, hit.Value)
		}
	}

	return bg
}

// FirstOf returns the highest weighted element of the category.
func FirstOf(elements []SearchElement, category Category) (SearchElement, bool) {
	var (
		best  SearchElement
		found bool
	)
	for _, element := range elements {
		if element.Category != category {
			continue
		}
		if !found || element.Weight > best.Weight {
			best, found = element, true
		}
	}
	return best, found
}
