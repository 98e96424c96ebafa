package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/networkiq/internal/ai"
	"github.com/spigell/networkiq/internal/background"
	"github.com/spigell/networkiq/internal/utils"
)

//go:embed prompts/message_system.md
var messageSystemPrompt string

const (
	messageMatches  = 3
	messageElements = 5
)

type textGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// MessageWriter drafts outreach messages with Gemini.
type MessageWriter struct {
	generator textGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewMessageWriter(generator textGenerator, maxLogLength int, logger *zap.Logger) *MessageWriter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageWriter{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (w *MessageWriter) Write(ctx context.Context, req *ai.MessageRequest) (string, error) {
	if w == nil || w.generator == nil {
		return "", ai.ErrUnavailable
	}
	if req == nil || req.Profile == nil {
		return "", errors.New("message request with profile is required")
	}

	raw, err := w.generator.GenerateContent(ctx, messageSystemPrompt, buildMessagePrompt(req))
	if err != nil {
		return "", err
	}

	w.logger.Debug("gemini message response",
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)

	return raw, nil
}

func buildMessagePrompt(req *ai.MessageRequest) string {
	p := req.Profile

	var b strings.Builder
	b.WriteString("Recipient:\n")
	fmt.Fprintf(&b, "- First name: %s\n", sanitizeField(p.FirstName(), maxFieldRunes))
	fmt.Fprintf(&b, "- Headline: %s\n", sanitizeField(p.Headline, maxFieldRunes))
	fmt.Fprintf(&b, "- Company: %s\n", sanitizeField(p.Company, maxFieldRunes))

	b.WriteString("\nConnection points, strongest first:\n")
	sharedEmployer := false
	if len(req.Matches) == 0 {
		b.WriteString("- none\n")
	}
	for i, match := range req.Matches {
		if match.Category == background.CategoryCompany {
			sharedEmployer = true
		}
		if i >= messageMatches {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", match.MatchesElement, match.Category, sanitizeField(match.FoundInProfile, maxFieldRunes))
	}
	fmt.Fprintf(&b, "- Shared employer: %s\n", yesNo(sharedEmployer))

	if len(req.Insights) > 0 {
		b.WriteString("\nInsights:\n")
		for _, insight := range req.Insights {
			fmt.Fprintf(&b, "- %s\n", sanitizeField(insight, maxAboutRunes))
		}
	}

	b.WriteString("\nSender background:\n")
	if len(req.Elements) == 0 {
		b.WriteString("- none\n")
	}
	for i, element := range req.Elements {
		if i >= messageElements {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", element.Display, element.Category)
	}

	return strings.TrimRight(b.String(), "\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
