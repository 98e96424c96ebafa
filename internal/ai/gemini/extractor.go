package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/utils"
)

//go:embed prompts/extract_system.md
var extractSystemPrompt string

const (
	maxResumeRunes       = 12000
	structuredConfidence = 0.9
)

var requiredExtractionKeys = []string{"education", "companies", "skills"}

var extractionKeys = []struct {
	key      string
	category background.Category
	academy  bool
}{
	{key: "education", category: background.CategoryEducation},
	{key: "companies", category: background.CategoryCompany},
	{key: "skills", category: background.CategorySkill},
	{key: "certifications", category: background.CategoryCertification},
	{key: "military", category: background.CategoryMilitary},
	{key: "military_academies", category: background.CategoryMilitary, academy: true},
	{key: "locations", category: background.CategoryLocation},
	{key: "keywords", category: background.CategoryKeyword},
	{key: "achievements", category: background.CategoryAchievement},
}

var extractResponseSchema = func() *genai.Schema {
	list := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	properties := map[string]*genai.Schema{
		"years_experience": {Type: genai.TypeInteger},
	}
	required := []string{"years_experience"}
	for _, k := range extractionKeys {
		properties[k.key] = list()
		required = append(required, k.key)
	}

	return &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required}
}()

// Extractor reads resume facts with a single schema-constrained call.
type Extractor struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator jsonGenerator, maxLogLength int, logger *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (e *Extractor) Extract(ctx context.Context, text string) (*ai.Extraction, error) {
	if e == nil || e.generator == nil {
		return nil, ai.ErrUnavailable
	}

	text = utils.Truncate(text, maxResumeRunes)
	if text == "" {
		return nil, errors.New("resume text is empty")
	}

	e.logger.Debug("gemini extraction request", zap.Int("resume_length", utf8.RuneCountInString(text)))

	raw, err := e.generator.GenerateJSON(ctx, extractSystemPrompt, "Resume:\n"+text, extractResponseSchema)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseExtraction(raw)
}

func parseExtraction(raw string) (*ai.Extraction, error) {
	cleaned := extractJSON(raw)
	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("parse gemini extraction: invalid json")
	}

	doc := gjson.Parse(cleaned)
	if !doc.IsObject() {
		return nil, fmt.Errorf("parse gemini extraction: expected an object")
	}

	for _, key := range requiredExtractionKeys {
		if value := doc.Get(key); !value.Exists() || !value.IsArray() {
			return nil, fmt.Errorf("parse gemini extraction: missing required key %q", key)
		}
	}

	extraction := &ai.Extraction{
		Hits:            []background.Hit{},
		YearsExperience: int(doc.Get("years_experience").Int()),
	}

	for _, k := range extractionKeys {
		doc.Get(k.key).ForEach(func(_, value gjson.Result) bool {
			name := strings.TrimSpace(value.String())
			if name == "" {
				return true
			}
			extraction.Hits = append(extraction.Hits, structuredHit(k.category, name, k.academy))
			return true
		})
	}

	return extraction, nil
}

func structuredHit(category background.Category, name string, academy bool) background.Hit {
	hit := background.Hit{
		Category:   category,
		Value:      name,
		Label:      name,
		Confidence: structuredConfidence,
	}

	switch category {
	case background.CategoryMilitary:
		if code, ok := background.Academy(name); ok {
			hit.Value, hit.Label, hit.Academy = code, "", true
			return hit
		}
		hit.Academy = academy
		hit.Label = ""
	case background.CategorySkill, background.CategoryKeyword:
		hit.Label = ""
	}

	return hit
}
