package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/document"
)

type stubExtractor struct {
	extraction *ai.Extraction
	err        error
	calls      int
}

func (s *stubExtractor) Extract(context.Context, string) (*ai.Extraction, error) {
	s.calls++
	return s.extraction, s.err
}

func hasHit(hits []background.Hit, category background.Category, value string) bool {
	for _, hit := range hits {
		if hit.Category == category && background.Normalize(hit.Value) == value {
			return true
		}
	}
	return false
}

func hasElement(elements []background.SearchElement, category background.Category, value string) bool {
	for _, element := range elements {
		if element.Category == category && element.Value == value {
			return true
		}
	}
	return false
}

func TestPatternExtractorDetectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    []background.Hit
		wantNot []background.Hit
	}{
		{
			name: "institution and degree",
			text: "B.S. Computer Science, Stanford University, 2012\nMBA from Harvard",
			want: []background.Hit{
				{Category: background.CategoryEducation, Value: "stanford university"},
				{Category: background.CategoryKeyword, Value: "mba"},
			},
		},
		{
			name: "academy suppresses branch",
			text: "Graduated from the United States Air Force Academy. Served in the Air Force as a pilot.",
			want: []background.Hit{
				{Category: background.CategoryMilitary, Value: "usafa"},
			},
			wantNot: []background.Hit{
				{Category: background.CategoryMilitary, Value: "air force"},
				{Category: background.CategoryEducation, Value: "united states air force academy"},
			},
		},
		{
			name: "branch alias",
			text: "USMC infantry officer, later software engineer",
			want: []background.Hit{
				{Category: background.CategoryMilitary, Value: "marine corps"},
				{Category: background.CategoryKeyword, Value: "engineer"},
			},
		},
		{
			name: "service indicator without branch",
			text: "Proud veteran and product manager",
			want: []background.Hit{
				{Category: background.CategoryMilitary, Value: "military"},
			},
		},
		{
			name: "negation suppresses military",
			text: "No military background. Worked with Army logistics clients as a veteran-owned vendor.",
			wantNot: []background.Hit{
				{Category: background.CategoryMilitary, Value: "army"},
				{Category: background.CategoryMilitary, Value: "military"},
			},
		},
		{
			name: "word boundaries",
			text: "Java and C++ developer. Maintained dashboards.",
			want: []background.Hit{
				{Category: background.CategorySkill, Value: "java"},
				{Category: background.CategorySkill, Value: "c++"},
			},
			wantNot: []background.Hit{
				{Category: background.CategorySkill, Value: "javascript"},
				{Category: background.CategoryKeyword, Value: "ai"},
			},
		},
		{
			name: "company vocabulary and line pattern",
			text: "Senior Engineer at Google.\nAcme Robotics | Staff Engineer",
			want: []background.Hit{
				{Category: background.CategoryCompany, Value: "google"},
				{Category: background.CategoryCompany, Value: "acme robotics"},
			},
		},
		{
			name: "locations",
			text: "Based in Austin, TX\nPreviously West Virginia",
			want: []background.Hit{
				{Category: background.CategoryLocation, Value: "austin"},
				{Category: background.CategoryLocation, Value: "west virginia"},
			},
			wantNot: []background.Hit{
				{Category: background.CategoryLocation, Value: "virginia"},
			},
		},
		{
			name: "certifications and achievements",
			text: "PMP and CISSP certified\nReceived the Chairman's Award for delivery",
			want: []background.Hit{
				{Category: background.CategoryCertification, Value: "pmp"},
				{Category: background.CategoryCertification, Value: "cissp"},
				{Category: background.CategoryAchievement, Value: "received the chairman's award for delivery"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			extraction, err := NewPatternExtractor().Extract(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, want := range tt.want {
				if !hasHit(extraction.Hits, want.Category, want.Value) {
					t.Errorf("expected %s hit %q in %+v", want.Category, want.Value, extraction.Hits)
				}
			}
			for _, unwanted := range tt.wantNot {
				if hasHit(extraction.Hits, unwanted.Category, unwanted.Value) {
					t.Errorf("unexpected %s hit %q", unwanted.Category, unwanted.Value)
				}
			}
		})
	}
}

func TestPatternExtractorEmptyText(t *testing.T) {
	t.Parallel()

	extraction, err := NewPatternExtractor().Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extraction.Hits == nil || len(extraction.Hits) != 0 {
		t.Fatalf("expected empty non-nil hits, got %#v", extraction.Hits)
	}
}

func TestEstimateExperience(t *testing.T) {
	t.Parallel()

	p := &PatternExtractor{now: func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }}

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "explicit statement", text: "12+ years of experience building platforms", want: 12},
		{name: "year span", text: "acme 2010 - 2014\nglobex 2014 - 2019", want: 9},
		{name: "present", text: "initech 2015 - present", want: 10},
		{name: "future years ignored", text: "2018 - 2020, certification expires 2031", want: 2},
		{name: "nothing", text: "no dates here", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.estimateExperience(tt.text); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDeriveStructured(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{extraction: &ai.Extraction{
		Hits: []background.Hit{
			{Category: background.CategoryMilitary, Value: "usafa", Academy: true, Confidence: 0.9},
			{Category: background.CategoryCompany, Value: "Google", Label: "Google", Confidence: 0.9},
		},
	}}

	bg := New(stub, zap.NewNop()).Derive(context.Background(), "Air Force Academy, 8 years experience at Google", Options{PreferStructured: true})

	if bg.Method != background.MethodStructured {
		t.Fatalf("expected structured method, got %q", bg.Method)
	}
	if bg.YearsExperience != 8 {
		t.Fatalf("expected pattern years to fill the gap, got %d", bg.YearsExperience)
	}
	if len(bg.SearchElements) != 2 || bg.SearchElements[0].Value != "usafa" {
		t.Fatalf("unexpected elements: %+v", bg.SearchElements)
	}
}

func TestDeriveFallsBackToPatterns(t *testing.T) {
	t.Parallel()

	text := "Software engineer at Google. Python, Kubernetes.\nStanford University"

	tests := []struct {
		name     string
		err      error
		wantWarn int
	}{
		{name: "generation failure", err: errors.New("parse gemini extraction: missing required key \"skills\""), wantWarn: 1},
		{name: "generation unavailable", err: ai.ErrUnavailable, wantWarn: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			stub := &stubExtractor{err: tt.err}

			bg := New(stub, zap.New(core)).Derive(context.Background(), text, Options{PreferStructured: true})

			if stub.calls != 1 {
				t.Fatalf("expected one structured attempt, got %d", stub.calls)
			}
			if bg.Method != background.MethodPattern {
				t.Fatalf("expected pattern method, got %q", bg.Method)
			}
			for _, want := range []struct {
				category background.Category
				value    string
			}{
				{background.CategoryCompany, "google"},
				{background.CategorySkill, "python"},
				{background.CategoryEducation, "stanford university"},
			} {
				if !hasElement(bg.SearchElements, want.category, want.value) {
					t.Errorf("expected %s element %q in %+v", want.category, want.value, bg.SearchElements)
				}
			}

			if got := logs.FilterLevelExact(zapcore.WarnLevel).Len(); got != tt.wantWarn {
				t.Fatalf("expected %d warnings, got %d", tt.wantWarn, got)
			}
		})
	}
}

func TestDeriveSkipsStructuredWhenNotPreferred(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{err: errors.New("must not be called")}
	bg := New(stub, nil).Derive(context.Background(), "Python developer", Options{})

	if stub.calls != 0 {
		t.Fatalf("expected no structured attempt, got %d", stub.calls)
	}
	if bg.Method != background.MethodPattern {
		t.Fatalf("expected pattern method, got %q", bg.Method)
	}
}

func TestFromDocument(t *testing.T) {
	t.Parallel()

	extractor := New(nil, nil)

	_, err := extractor.FromDocument(context.Background(), nil, document.KindPDF, Options{})
	var formatErr *document.DocumentFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected DocumentFormatError, got %v", err)
	}

	bg, err := extractor.FromDocument(context.Background(), []byte("Navy veteran, Python engineer"), document.KindTXT, Options{PreferStructured: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasElement(bg.SearchElements, background.CategoryMilitary, "navy") {
		t.Fatalf("expected navy element, got %+v", bg.SearchElements)
	}
}
