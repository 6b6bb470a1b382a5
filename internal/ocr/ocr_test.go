package ocr

import (
	"context"
	"strings"
	"testing"
)

func TestDetectBarcode(t *testing.T) {
	dotted := "23793.38128 60000.000003 00000.000400 1 84340000012345"
	bare := strings.Repeat("1234567890", 4) + "1234567"

	tests := []struct {
		name, text, want string
	}{
		{"dotted line", "Pague até 10/05\n" + dotted + "\nobrigado", dotted},
		{"bare digits", "code: " + bare, bare},
		{"too short", "1234567890", ""},
		{"empty", "", ""},
		{"first wins", dotted + " " + bare, dotted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBarcode(tt.text); got != tt.want {
				t.Errorf("DetectBarcode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	for ct, want := range map[string]bool{
		"image/png":       false,
		"IMAGE/JPEG":      false,
		"application/pdf": true,
		"":                true,
	} {
		if got := Skip(ct); got != want {
			t.Errorf("Skip(%q) = %v, want %v", ct, got, want)
		}
	}
}

func TestNoopExtractor(t *testing.T) {
	text, err := NoopExtractor{}.Extract(context.Background(), "image/png", []byte{1, 2})
	if err != nil || text != "" {
		t.Errorf("Extract() = %q, %v", text, err)
	}
}
