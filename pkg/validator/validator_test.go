package validator

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitize_Valid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple", "technology", "technology"},
		{"uppercase", "Technology", "technology"},
		{"mixed case", "PhArMa", "pharma"},
		{"padding", "  energy  ", "energy"},
		{"hyphen", "real-estate", "real-estate"},
		{"digits", "web3", "web3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.raw)
			if err != nil {
				t.Fatalf("Sanitize(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"underscore", "Pharma_2024!"},
		{"semicolon", "tech;drop"},
		{"angle bracket", "tech<b>"},
		{"inner space", "real estate"},
		{"script tag", "<script>alert(1)</script>"},
		{"js scheme", "javascript:void(0)"},
		{"too long", strings.Repeat("a", MaxSectorLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(tt.raw)
			if err == nil {
				t.Fatalf("Sanitize(%q) expected error, got nil", tt.raw)
			}
			var ise *InvalidSectorError
			if !errors.As(err, &ise) {
				t.Errorf("Sanitize(%q) error type = %T, want *InvalidSectorError", tt.raw, err)
			}
		})
	}
}

func TestSanitize_CasingNormalizesIdentically(t *testing.T) {
	variants := []string{"technology", "Technology", "TECHNOLOGY", " technology "}
	for _, v := range variants {
		got, err := Sanitize(v)
		if err != nil {
			t.Fatalf("Sanitize(%q) error = %v", v, err)
		}
		if got != "technology" {
			t.Errorf("Sanitize(%q) = %q, want %q", v, got, "technology")
		}
	}
}
