package background

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWeigh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		category   Category
		confidence float64
		academy    bool
		expect     int
	}{
		{name: "academy full confidence", category: CategoryMilitary, confidence: 1, academy: true, expect: 45},
		{name: "academy low confidence", category: CategoryMilitary, confidence: 0, academy: true, expect: 40},
		{name: "service", category: CategoryMilitary, confidence: 1, expect: 35},
		{name: "education", category: CategoryEducation, confidence: 1, expect: 35},
		{name: "company partial", category: CategoryCompany, confidence: 0.4, expect: 27},
		{name: "keyword is flat", category: CategoryKeyword, confidence: 0.9, expect: 5},
		{name: "confidence clamped above", category: CategorySkill, confidence: 3, expect: 15},
		{name: "confidence clamped below", category: CategoryCertification, confidence: -1, expect: 15},
		{name: "academy flag ignored outside military", category: CategoryEducation, confidence: 0, academy: true, expect: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Weigh(tt.category, tt.confidence, tt.academy); got != tt.expect {
				t.Fatalf("expected weight %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestWeighStaysInsideBands(t *testing.T) {
	t.Parallel()

	for _, category := range Categories() {
		for _, academy := range []bool{false, true} {
			band := category.Band(academy)
			for c := 0.0; c <= 1.0; c += 0.05 {
				w := Weigh(category, c, academy)
				if w < band.Min || w > band.Max {
					t.Fatalf("%s (academy=%v) weight %d outside [%d, %d]", category, academy, w, band.Min, band.Max)
				}
			}
		}
	}
}

func TestBuildAcademyElement(t *testing.T) {
	t.Parallel()

	elements := Build([]Hit{{Category: CategoryMilitary, Value: "USAFA", Academy: true, Confidence: 1}})

	expected := []SearchElement{{
		Category:   CategoryMilitary,
		Value:      "usafa",
		Display:    "USAFA Alumni",
		Weight:     45,
		Confidence: 1,
	}}

	if diff := cmp.Diff(expected, elements); diff != "" {
		t.Fatalf("unexpected elements (-want +got):\n%s", diff)
	}
}

func TestBuildDeduplicatesKeepingMaxConfidence(t *testing.T) {
	t.Parallel()

	elements := Build([]Hit{
		{Category: CategoryCompany, Value: "Google", Confidence: 0.4},
		{Category: CategoryCompany, Value: "  google ", Confidence: 1},
		{Category: CategorySkill, Value: "Python", Confidence: 1},
		{Category: CategorySkill, Value: "", Confidence: 1},
		{Category: Category("hobby"), Value: "chess", Confidence: 1},
	})

	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d: %+v", len(elements), elements)
	}

	if elements[0].Value != "google" || elements[0].Weight != 30 {
		t.Fatalf("expected google weighted at max confidence, got %+v", elements[0])
	}

	if elements[0].Display != "Former Google" {
		t.Fatalf("unexpected display: %q", elements[0].Display)
	}

	if elements[1].Display != "Shared skill: python" {
		t.Fatalf("unexpected skill display: %q", elements[1].Display)
	}
}

func TestBuildCapsAndSorts(t *testing.T) {
	t.Parallel()

	var hits []Hit
	for i := 0; i < 12; i++ {
		hits = append(hits, Hit{Category: CategorySkill, Value: fmt.Sprintf("skill-%02d", i), Confidence: 1})
	}
	for i := 0; i < 8; i++ {
		hits = append(hits, Hit{Category: CategoryKeyword, Value: fmt.Sprintf("keyword-%d", i), Confidence: 1})
	}
	hits = append(hits,
		Hit{Category: CategoryEducation, Value: "stanford university", Confidence: 1},
		Hit{Category: CategoryCompany, Value: "google", Confidence: 1},
		Hit{Category: CategoryMilitary, Value: "navy", Confidence: 1},
	)

	elements := Build(hits)

	if len(elements) != MaxElements {
		t.Fatalf("expected %d elements, got %d", MaxElements, len(elements))
	}

	for i := 1; i < len(elements); i++ {
		if elements[i].Weight > elements[i-1].Weight {
			t.Fatalf("elements not sorted by weight at %d: %d > %d", i, elements[i].Weight, elements[i-1].Weight)
		}
	}

	skills := 0
	for _, element := range elements {
		if element.Category == CategorySkill {
			skills++
		}
	}
	if skills > MaxSkills {
		t.Fatalf("expected at most %d skills, got %d", MaxSkills, skills)
	}

	if elements[0].Category != CategoryMilitary {
		t.Fatalf("expected military first on tie-break, got %+v", elements[0])
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	elements := Build(nil)
	if elements == nil || len(elements) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", elements)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := map[string]Category{
		"Education":        CategoryEducation,
		"companies":        CategoryCompany,
		"military service": CategoryMilitary,
		" Skills ":         CategorySkill,
		"certs":            CategoryCertification,
		"awards":           CategoryAchievement,
	}

	for input, expect := range tests {
		got, ok := ParseCategory(input)
		if !ok || got != expect {
			t.Fatalf("ParseCategory(%q) = %q, %v; expected %q", input, got, ok, expect)
		}
	}

	if _, ok := ParseCategory("hobby"); ok {
		t.Fatal("expected unknown category to be rejected")
	}
}

func TestNewSummarizesHits(t *testing.T) {
	t.Parallel()

	bg := New(MethodPattern, 7, []Hit{
		{Category: CategoryCompany, Value: "Google", Confidence: 1},
		{Category: CategoryMilitary, Value: "navy", Confidence: 1},
		{Category: CategoryLocation, Value: "california", Confidence: 0.6},
	})

	if diff := cmp.Diff([]string{"google"}, bg.Companies); diff != "" {
		t.Fatalf("unexpected companies (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"navy"}, bg.Military); diff != "" {
		t.Fatalf("unexpected military (-want +got):\n%s", diff)
	}
	if bg.YearsExperience != 7 || bg.Method != MethodPattern {
		t.Fatalf("unexpected metadata: %+v", bg)
	}
	if len(bg.SearchElements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(bg.SearchElements))
	}

	first, ok := FirstOf(bg.SearchElements, CategoryCompany)
	if !ok || first.Display != "Former Google" {
		t.Fatalf("unexpected first company: %+v", first)
	}
}
