// Package messaging drafts outreach messages from a match result.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/matching"
	"github.com/spigell/networkiq/internal/profile"
)

// TargetLength is the soft limit for a message. Longer drafts are logged, not cut.
const TargetLength = 300

const (
	StrategyGenerated = "generated"
	StrategyTemplate  = "template"
)

var placeholderRe = regexp.MustCompile(`\[[^\]]*\]|\{[^}]*\}|<[^>]*>`)

var errPlaceholder = errors.New("message contains placeholder tokens")

// Message is one drafted outreach message.
type Message struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
}

// Generator drafts a message with the writer and falls back to templates.
type Generator struct {
	writer ai.MessageWriter
	logger *zap.Logger
}

// New builds a Generator. writer may be nil.
func New(writer ai.MessageWriter, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{writer: writer, logger: logger}
}

// Generate never fails.
func (g *Generator) Generate(ctx context.Context, p *profile.Profile, result *matching.MatchResult, elements []background.SearchElement) Message {
	if p == nil {
		p = &profile.Profile{}
	}
	if result == nil {
		result = &matching.MatchResult{}
	}

	if g.writer != nil {
		text, err := g.generated(ctx, p, result, elements)
		switch {
		case err == nil:
			return Message{Text: text, Strategy: StrategyGenerated}
		case errors.Is(err, ai.ErrUnavailable):
			g.logger.Debug("message writer unavailable")
		default:
			g.logger.Warn("generated message rejected; using template", zap.Error(err))
		}
	}

	return Message{Text: Template(p, result, elements), Strategy: StrategyTemplate}
}

func (g *Generator) generated(ctx context.Context, p *profile.Profile, result *matching.MatchResult, elements []background.SearchElement) (string, error) {
	raw, err := g.writer.Write(ctx, &ai.MessageRequest{
		Profile:  p,
		Matches:  result.Matches,
		Insights: result.Insights,
		Elements: elements,
	})
	if err != nil {
		return "", err
	}

	text := clean(raw)
	if text == "" {
		return "", errors.New("message writer returned empty text")
	}
	if placeholderRe.MatchString(text) {
		return "", errPlaceholder
	}

	if n := utf8.RuneCountInString(text); n > TargetLength {
		g.logger.Info("generated message exceeds target length", zap.Int("length", n), zap.Int("target", TargetLength))
	}
	return text, nil
}

func clean(raw string) string {
	text := strings.TrimSpace(raw)
	for _, quote := range []string{`"`, `'`, "`", "“", "”"} {
		text = strings.TrimPrefix(text, quote)
		text = strings.TrimSuffix(text, quote)
	}
	return strings.TrimSpace(text)
}

var withMatchTemplates = []string{
	"Hi {name}! I noticed we share {connection}. Given {mine}, I'd love to connect and exchange insights!",
	"Hi {name}, we share {connection}, which caught my eye. With {mine}, I think we'd have plenty to talk about. Open to connecting?",
	"Hello {name}! Seeing {connection} in common made me want to reach out. Drawing on {mine}, I'd value swapping notes.",
}

var withoutMatchTemplates = []string{
	"Hi {name}! Your background at {company} is impressive. With {mine}, I'd value connecting!",
	"Hello {name}, your work at {company} stood out to me. Coming from {mine}, I'd be glad to connect.",
	"Hi {name}, I've been following what {company} is building. With {mine}, I'd enjoy exchanging ideas.",
}

// Template renders the deterministic message. The same profile always selects the same template.
func Template(p *profile.Profile, result *matching.MatchResult, elements []background.SearchElement) string {
	name := p.FirstName()
	if name == "" {
		name = "there"
	}

	company := strings.TrimSpace(p.Company)
	if company == "" {
		company = "your company"
	}

	mine := "my work"
	if element, ok := firstCompany(elements); ok {
		mine = "my experience at " + entityName(element)
	}

	templates := withoutMatchTemplates
	connection := ""
	if result != nil && len(result.Matches) > 0 {
		templates = withMatchTemplates
		connection = strings.TrimSpace(result.Matches[0].MatchesElement)
		if connection == "" {
			connection = "similar interests"
		}
	}

	replacer := strings.NewReplacer(
		"{name}", name,
		"{company}", company,
		"{mine}", mine,
		"{connection}", connection,
	)
	return replacer.Replace(templates[pick(p, len(templates))])
}

// pick hashes the profile payload into a template index.
func pick(p *profile.Profile, n int) int {
	payload, err := json.Marshal(p)
	if err != nil {
		payload = []byte(p.Name + p.Headline + p.Company)
	}
	return int(xxhash.Sum64(payload) % uint64(n))
}

// firstCompany returns the user's first company element in list order.
func firstCompany(elements []background.SearchElement) (background.SearchElement, bool) {
	for _, element := range elements {
		if element.Category == background.CategoryCompany {
			return element, true
		}
	}
	return background.SearchElement{}, false
}

func entityName(element background.SearchElement) string {
	if name := strings.TrimPrefix(element.Display, "Former "); name != "" && name != element.Display {
		return name
	}
	if element.Display != "" {
		return element.Display
	}
	return element.Value
}
