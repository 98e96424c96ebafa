// Package profile holds the scraped profile fields consumed by matching.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/networkiq/internal/background"
)

// Profile is one candidate profile. It is scored and discarded, never stored.
type Profile struct {
	Name     string `json:"name"`
	Headline string `json:"headline,omitempty"`
	About    string `json:"about,omitempty"`
	Text     string `json:"text,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
}

var ErrEmpty = errors.New("profile has no text")

// Validate reports profiles that carry nothing to match against.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("profile is required")
	}
	if strings.TrimSpace(p.Text+p.Headline+p.About) == "" {
		return ErrEmpty
	}
	return nil
}

// Corpus returns the text, headline and about fields joined and folded with background.Normalize,
// so it compares directly against element values.
func (p *Profile) Corpus() string {
	parts := make([]string, 0, 3)
	for _, field := range []string{p.Text, p.Headline, p.About} {
		if field = strings.TrimSpace(field); field != "" {
			parts = append(parts, field)
		}
	}
	return background.Normalize(strings.Join(parts, " "))
}

// FirstName returns the first word of the name, or an empty string.
func (p *Profile) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Label is a short human readable identifier used in logs and prompts.
func (p *Profile) Label() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "unknown"
	}
	if p.Company != "" {
		return fmt.Sprintf("%s / %s", name, p.Company)
	}
	return name
}

// FromFile reads a profile JSON file holding either one object or a list.
func FromFile(path string) ([]*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses one profile object or a list of them.
func Decode(data []byte) ([]*Profile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("profile payload is empty")
	}

	if data[0] == '[' {
		var profiles []*Profile
		if err := json.Unmarshal(data, &profiles); err != nil {
			return nil, fmt.Errorf("decode profiles: %w", err)
		}
		return profiles, nil
	}

	var single Profile
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return []*Profile{&single}, nil
}
