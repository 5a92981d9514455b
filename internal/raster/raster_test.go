package raster

import (
	"errors"
	"testing"

	"github.com/recera/graphscope/pkg/viewport"
)

// left half black, right half transparent
const halfSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50">
<rect x="0" y="0" width="50" height="50" fill="#000000"/>
</svg>`

func TestRasterize(t *testing.T) {
	img, err := Rasterize([]byte(halfSVG), 200)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if img.Scale != 2 {
		t.Errorf("Expected scale 2, got %v", img.Scale)
	}
	if b := img.RGBA.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("Expected 200x100 raster, got %v", b)
	}

	if lum := img.Luminance(viewport.Point{X: 20, Y: 25}); lum > 0.1 {
		t.Errorf("Expected dark left half, got %v", lum)
	}
	if lum := img.Luminance(viewport.Point{X: 80, Y: 25}); lum < 0.9 {
		t.Errorf("Expected light right half, got %v", lum)
	}
	if lum := img.Luminance(viewport.Point{X: -5, Y: 25}); lum != 1 {
		t.Errorf("Expected white outside the image, got %v", lum)
	}
}

func TestRasterize_Errors(t *testing.T) {
	if _, err := Rasterize([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), 100); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		lum  float64
		want byte
	}{
		{0, '@'},
		{1, ' '},
		{-3, '@'},
		{7, ' '},
	}
	for _, tt := range tests {
		if got := Glyph(tt.lum); got != tt.want {
			t.Errorf("Glyph(%v) = %q, expected %q", tt.lum, got, tt.want)
		}
	}
}

func TestSample(t *testing.T) {
	img, err := Rasterize([]byte(halfSVG), 200)
	if err != nil {
		t.Fatal(err)
	}

	// view box fitted into a 100x50 container at zoom 1
	s := viewport.State{Zoom: 1, Container: viewport.Size{Width: 100, Height: 50}}
	lines := img.Sample(s, 4, 2)
	if len(lines) != 2 || len(lines[0]) != 4 {
		t.Fatalf("Unexpected sample shape: %q", lines)
	}
	if lines[0] != "@@  " || lines[1] != "@@  " {
		t.Errorf("Expected dark left and light right, got %q", lines)
	}

	// panned left by the full left half
	s.Pan = viewport.Point{X: -50}
	if got := img.Sample(s, 4, 1)[0]; got != "    " {
		t.Errorf("Expected light after panning, got %q", got)
	}

	if img.Sample(viewport.State{}, 4, 2) != nil {
		t.Error("Expected nil for an invalid state")
	}
}
