package background

import "strings"

// Category is the closed set of fact kinds a search element can describe.
type Category string

const (
	CategoryEducation     Category = "education"
	CategoryCompany       Category = "company"
	CategoryMilitary      Category = "military"
	CategorySkill         Category = "skill"
	CategoryCertification Category = "certification"
	CategoryLocation      Category = "location"
	CategoryKeyword       Category = "keyword"
	CategoryAchievement   Category = "achievement"
)

// MatchRule tells a matcher how strictly a category has to correspond.
type MatchRule int

const (
	// RuleExactEntity requires the same institution, employer or credential.
	RuleExactEntity MatchRule = iota + 1
	// RuleCrossEquivalent accepts any member of the category as equivalent.
	RuleCrossEquivalent
	// RuleFlexible accepts implied or paraphrased mentions.
	RuleFlexible
)

// Band is the inclusive weight range of a category.
type Band struct {
	Min int
	Max int
}

type categoryInfo struct {
	rule    MatchRule
	band    Band
	academy Band
}

var categories = map[Category]categoryInfo{
	CategoryMilitary:      {rule: RuleCrossEquivalent, band: Band{30, 35}, academy: Band{40, 45}},
	CategoryEducation:     {rule: RuleExactEntity, band: Band{30, 35}},
	CategoryCompany:       {rule: RuleExactEntity, band: Band{25, 30}},
	CategoryLocation:      {rule: RuleFlexible, band: Band{25, 30}},
	CategoryCertification: {rule: RuleExactEntity, band: Band{15, 20}},
	CategoryAchievement:   {rule: RuleFlexible, band: Band{10, 15}},
	CategorySkill:         {rule: RuleFlexible, band: Band{10, 15}},
	CategoryKeyword:       {rule: RuleFlexible, band: Band{5, 5}},
}

// categoryOrder breaks weight ties and orders prompt sections.
var categoryOrder = []Category{
	CategoryMilitary,
	CategoryEducation,
	CategoryCompany,
	CategoryLocation,
	CategoryCertification,
	CategoryAchievement,
	CategorySkill,
	CategoryKeyword,
}

// Categories returns every category in priority order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

func (c Category) Rule() MatchRule {
	return categories[c].rule
}

// Band returns the weight band, using the academy band for military academies.
func (c Category) Band(academy bool) Band {
	info := categories[c]
	if academy && c == CategoryMilitary {
		return info.academy
	}
	return info.band
}

func (c Category) rank() int {
	for i, candidate := range categoryOrder {
		if candidate == c {
			return i
		}
	}
	return len(categoryOrder)
}

// ParseCategory maps loosely formatted category names onto the enum.
func ParseCategory(raw string) (Category, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "_")

	switch name {
	case "education", "school", "schools", "university", "universities":
		return CategoryEducation, true
	case "company", "companies", "employer", "employers":
		return CategoryCompany, true
	case "military", "military_service", "service":
		return CategoryMilitary, true
	case "skill", "skills":
		return CategorySkill, true
	case "certification", "certifications", "cert", "certs":
		return CategoryCertification, true
	case "location", "locations":
		return CategoryLocation, true
	case "keyword", "keywords":
		return CategoryKeyword, true
	case "achievement", "achievements", "award", "awards":
		return CategoryAchievement, true
	}
	return "", false
}

func (r MatchRule) String() string {
	switch r {
	case RuleExactEntity:
		return "exact-entity"
	case RuleCrossEquivalent:
		return "cross-equivalent"
	case RuleFlexible:
		return "flexible"
	default:
		return "unknown"
	}
}

// Guidance is the instruction a generation backend receives for the rule.
func (r MatchRule) Guidance() string {
	switch r {
	case RuleExactEntity:
		return "Match only the same entity. Recognized subsidiaries, divisions and former names count " +
			"(Google and Alphabet, Facebook and Meta). A different organization of similar prestige or type never counts."
	case RuleCrossEquivalent:
		return "Any service record matches any other service record regardless of branch. " +
			"An Army veteran matches a Navy veteran at full weight. Academy graduates match any veteran."
	case RuleFlexible:
		return "Implied or paraphrased mentions count when the profile clearly describes the same thing."
	default:
		return ""
	}
}
