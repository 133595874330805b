package api

import (
	"testing"
)

func TestNewPipeID(t *testing.T) {
	id := NewPipeID()
	if !ValidatePipeID(id) {
		t.Errorf("NewPipeID() = %q, want valid pipe ID", id)
	}
}

func TestNewGenerationID(t *testing.T) {
	id := NewGenerationID()
	if !ValidateGenerationID(id) {
		t.Errorf("NewGenerationID() = %q, want valid generation ID", id)
	}
}

func TestValidatePipeID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "pipe_abcdefghijklmnopqrstuvwx", true},
		{"valid mixed case", "pipe_AbCdEfGhIjKlMnOpQrStUvWx", true},
		{"valid digits", "pipe_123456789012345678901234", true},
		{"wrong prefix", "gen_abcdefghijklmnopqrstuvwx", false},
		{"no prefix", "abcdefghijklmnopqrstuvwxyz1234", false},
		{"too short", "pipe_abc", false},
		{"too long", "pipe_abcdefghijklmnopqrstuvwxy", false},
		{"special chars", "pipe_abcdefghijklmnopqrstuv!@", false},
		{"empty", "", false},
		{"prefix only", "pipe_", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePipeID(tt.id); got != tt.want {
				t.Errorf("ValidatePipeID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidateGenerationID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "gen_abcdefghijklmnopqrstuvwx", true},
		{"wrong prefix", "pipe_abcdefghijklmnopqrstuvwx", false},
		{"too short", "gen_abc", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateGenerationID(tt.id); got != tt.want {
				t.Errorf("ValidateGenerationID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIDUniqueness(t *testing.T) {
	const count = 1000
	seen := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		id := NewPipeID()
		if seen[id] {
			t.Fatalf("duplicate pipe ID after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}
