package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/profile"
	"github.com/spigell/networkiq/internal/utils"
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, system, message string, schema *genai.Schema) (string, error)
}

// Matcher asks Gemini for connection points between a profile and a background.
type Matcher struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompts/match_system.md
var matchSystemTemplate string

//go:embed prompts/match_input.md
var matchInputTemplate string

const (
	defaultMaxLogLength = 200
	maxAboutRunes       = 500
	maxTextRunes        = 1000
	maxFieldRunes       = 200
)

const matchJSONSchema = `{
  "type": "object",
  "required": ["matches"],
  "properties": {
    "matches": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["matches_element"],
        "properties": {
          "category": {"type": ["string", "null"]},
          "found_in_profile": {"type": ["string", "null"]},
          "matches_element": {"type": "string"},
          "points": {"type": ["number", "string", "null"]},
          "confidence": {"type": ["number", "string", "null"]},
          "reasoning": {"type": ["string", "null"]}
        }
      }
    },
    "insights": {"type": ["array", "null"]},
    "hidden_connections": {"type": ["array", "null"]},
    "recommendation": {"type": ["string", "null"]}
  }
}`

var matchSchema = mustSchema(matchJSONSchema)

var matchResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"matches": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category":         {Type: genai.TypeString},
					"found_in_profile": {Type: genai.TypeString},
					"matches_element":  {Type: genai.TypeString},
					"points":           {Type: genai.TypeNumber},
					"confidence":       {Type: genai.TypeNumber},
					"reasoning":        {Type: genai.TypeString},
				},
				Required: []string{"category", "found_in_profile", "matches_element", "points", "confidence"},
			},
		},
		"insights":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"hidden_connections": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"recommendation":     {Type: genai.TypeString},
	},
	Required: []string{"matches", "insights", "hidden_connections", "recommendation"},
}

func NewMatcher(generator jsonGenerator, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Evaluate(ctx context.Context, p *profile.Profile, elements []background.SearchElement) (*ai.Assessment, error) {
	if m == nil || m.generator == nil {
		return nil, ai.ErrUnavailable
	}
	if p == nil {
		return nil, errors.New("profile is required")
	}
	if len(elements) == 0 {
		return nil, errors.New("search elements are required")
	}

	system := buildSystemPrompt()
	prompt := buildPrompt(p, elements)

	m.logger.Debug("gemini match request",
		zap.Int("elements", len(elements)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := m.generator.GenerateJSON(ctx, system, prompt, matchResponseSchema)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini match response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseAssessment(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildSystemPrompt() string {
	var rules strings.Builder
	for _, category := range background.Categories() {
		band := category.Band(false)
		fmt.Fprintf(&rules, "- %s (%s): %s", category, category.Rule(), category.Rule().Guidance())
		if category == background.CategoryMilitary {
			academy := category.Band(true)
			fmt.Fprintf(&rules, " Weight %d-%d, service academies %d-%d.\n", band.Min, band.Max, academy.Min, academy.Max)
			continue
		}
		fmt.Fprintf(&rules, " Weight %d-%d.\n", band.Min, band.Max)
	}

	return strings.ReplaceAll(matchSystemTemplate, "{{CATEGORY_RULES}}", strings.TrimRight(rules.String(), "\n"))
}

func buildPrompt(p *profile.Profile, elements []background.SearchElement) string {
	template := matchInputTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{NAME}}\n{{HEADLINE}}\n{{TEXT}}\n\nElements:\n{{ELEMENTS}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{NAME}}", sanitizeField(p.Name, maxFieldRunes),
		"{{HEADLINE}}", sanitizeField(p.Headline, maxFieldRunes),
		"{{COMPANY}}", sanitizeField(p.Company, maxFieldRunes),
		"{{LOCATION}}", sanitizeField(p.Location, maxFieldRunes),
		"{{ABOUT}}", sanitizeField(p.About, maxAboutRunes),
		"{{TEXT}}", sanitizeField(p.Text, maxTextRunes),
		"{{ELEMENTS}}", formatElements(elements),
	)
	return replacer.Replace(template)
}

var bracketReplacer = strings.NewReplacer("[", "(", "]", ")", "{{", "(", "}}", ")")

// sanitizeField flattens scraped text onto one line so it cannot open new prompt sections.
func sanitizeField(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = bracketReplacer.Replace(s)
	return orNone(utils.Truncate(s, limit))
}

func formatElements(elements []background.SearchElement) string {
	var builder strings.Builder
	for _, group := range background.Group(elements) {
		fmt.Fprintf(&builder, "[%s]\n", group.Category)
		for _, element := range group.Elements {
			fmt.Fprintf(&builder, "- %s | %s | %d\n", element.Display, element.Value, element.Weight)
		}
	}
	return strings.TrimRight(builder.String(), "\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func parseAssessment(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	if err := validateDocument(matchSchema, cleaned); err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var assessment ai.Assessment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &assessment,
	})
	if err != nil {
		return nil, fmt.Errorf("create response decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	if assessment.Candidates == nil {
		assessment.Candidates = []ai.Candidate{}
	}
	assessment.Recommendation = strings.TrimSpace(assessment.Recommendation)
	assessment.Insights = compact(assessment.Insights)
	assessment.HiddenConnections = compact(assessment.HiddenConnections)

	return &assessment, nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("compile response schema: %v", err))
	}
	return schema
}

// validateDocument checks a response against schema, reporting every failing field.
func validateDocument(schema *gojsonschema.Schema, document string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("parse gemini response: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return fmt.Errorf("gemini response does not match schema: %s", strings.Join(problems, "; "))
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
