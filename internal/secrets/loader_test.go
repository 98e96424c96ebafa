package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("NETWORKIQ_TEST_KEY", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr bool
	}{
		{name: "file wins", src: Source{Name: "key", File: keyFile, Value: "inline", Env: "NETWORKIQ_TEST_KEY"}, want: "from-file"},
		{name: "inline over env", src: Source{Value: " inline ", Env: "NETWORKIQ_TEST_KEY"}, want: "inline"},
		{name: "env", src: Source{Env: "NETWORKIQ_TEST_KEY"}, want: "from-env"},
		{name: "empty file", src: Source{File: emptyFile, Env: "NETWORKIQ_TEST_KEY"}, wantErr: true},
		{name: "missing file", src: Source{File: filepath.Join(dir, "missing")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadNotConfigured(t *testing.T) {
	t.Setenv("NETWORKIQ_UNSET_KEY", "")

	_, err := Load(Source{Name: "gemini api key", Env: "NETWORKIQ_UNSET_KEY"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
