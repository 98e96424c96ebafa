package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/networkiq/internal/background"
)

// Usage kinds counted per user and day.
const (
	UsageExtract = "extract"
	UsageScore   = "score"
	UsageMessage = "message"
)

func backgroundKey(user string) string {
	return "background/" + strings.TrimSpace(user)
}

func usageKey(user, kind string, day time.Time) string {
	return fmt.Sprintf("usage/%s/%s/%s", strings.TrimSpace(user), day.UTC().Format(time.DateOnly), kind)
}

// SaveBackground replaces the user's background wholesale.
func SaveBackground(ctx context.Context, s Store, user string, bg *background.Background) error {
	if bg == nil {
		return errors.New("background is required")
	}
	data, err := json.Marshal(bg)
	if err != nil {
		return fmt.Errorf("encode background: %w", err)
	}
	return s.Put(ctx, backgroundKey(user), data)
}

// LoadBackground returns ErrNotFound when the user has never uploaded a resume.
func LoadBackground(ctx context.Context, s Store, user string) (*background.Background, error) {
	data, err := s.Get(ctx, backgroundKey(user))
	if err != nil {
		return nil, err
	}
	var bg background.Background
	if err := json.Unmarshal(data, &bg); err != nil {
		return nil, fmt.Errorf("decode background for %s: %w", user, err)
	}
	return &bg, nil
}

// IncrementUsage bumps an aggregate counter and returns the new count.
// Only the count is stored; nothing about the scored profiles is.
// The read and write are separate calls, so concurrent writers for the same key may lose an increment.
func IncrementUsage(ctx context.Context, s Store, user, kind string, day time.Time) (int, error) {
	key := usageKey(user, kind, day)

	count := 0
	data, err := s.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return 0, err
	default:
		if err := json.Unmarshal(data, &count); err != nil {
			return 0, fmt.Errorf("decode usage %s: %w", key, err)
		}
	}

	count++
	encoded, err := json.Marshal(count)
	if err != nil {
		return 0, err
	}
	if err := s.Put(ctx, key, encoded); err != nil {
		return 0, err
	}
	return count, nil
}
