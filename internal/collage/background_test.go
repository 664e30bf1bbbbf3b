package collage

import (
	"image"
	"image/color"
	"testing"
)

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		str  string
	}{
		{in: "", want: DefaultBackground, str: "#000000"},
		{in: "black", want: DefaultBackground, str: "#000000"},
		{in: " White ", want: color.RGBA{R: 255, G: 255, B: 255, A: 255}, str: "#FFFFFF"},
		{in: "#336699", want: color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}, str: "#336699"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bg, err := ParseBackground(tt.in)
			if err != nil {
				t.Fatalf("ParseBackground(%q) error = %v", tt.in, err)
			}
			if got := bg.Resolve(nil); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got := bg.String(); got != tt.str {
				t.Errorf("expected String() %q, got %q", tt.str, got)
			}
		})
	}
}

func TestParseBackground_Invalid(t *testing.T) {
	for _, in := range []string{"purple-ish", "#12", "dominantly"} {
		if _, err := ParseBackground(in); err == nil {
			t.Errorf("ParseBackground(%q): expected error", in)
		}
	}
}

func TestBackground_Dominant(t *testing.T) {
	bg, err := ParseBackground("dominant")
	if err != nil {
		t.Fatalf("ParseBackground error = %v", err)
	}
	if bg.String() != "dominant" {
		t.Errorf("expected String() dominant, got %q", bg.String())
	}

	// Without images the dominant background falls back to black
	if got := bg.Resolve(nil); got != DefaultBackground {
		t.Errorf("expected black fallback, got %v", got)
	}

	red := color.RGBA{R: 200, G: 20, B: 20, A: 255}
	got := bg.Resolve([]image.Image{solid(32, 32, red)})
	if got.A != 255 {
		t.Errorf("expected opaque dominant color, got %v", got)
	}
	if got.R <= got.G || got.R <= got.B {
		t.Errorf("expected a red dominant color, got %v", got)
	}
}
