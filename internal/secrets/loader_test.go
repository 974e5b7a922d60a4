package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{
			name: "inline value is trimmed",
			src:  Source{Name: "gemini api key", Value: "  inline  "},
			want: "inline",
		},
		{
			name: "file wins over value",
			src:  Source{Name: "gemini api key", Value: "inline", File: keyFile},
			want: "from-file",
		},
		{
			name:    "missing value",
			src:     Source{Name: "gemini api key"},
			wantErr: "gemini api key is not configured",
		},
		{
			name:    "empty file",
			src:     Source{Name: "gemini api key", File: emptyFile},
			wantErr: "is empty",
		},
		{
			name:    "unreadable file",
			src:     Source{File: filepath.Join(dir, "missing")},
			wantErr: "reading secret from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
