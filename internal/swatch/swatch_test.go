package swatch

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"#abc", "#ABC000", true},
		{"#FF0000", "#FF0000", true},
		{"#ff0000", "#FF0000", true},
		{" #112233 ", "#112233", true},
		{"#1", "#100000", true},
		{"zzzzzz", "", false},
		{"FF0000", "", false},
		{"#", "", false},
		{"#GG0000", "", false},
		{"#1234567", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("#112233")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}
	if c != want {
		t.Errorf("Expected %v, got %v", want, c)
	}
	if _, err := Parse("zzzzzz"); err == nil {
		t.Error("Expected error for invalid color")
	}
}

func TestRender(t *testing.T) {
	data, err := Render("#112233", 16)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected valid PNG, got %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("Expected 16x16 swatch, got %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, a := img.At(8, 8).RGBA()
	if r>>8 != 0x11 || g>>8 != 0x22 || b>>8 != 0x33 || a>>8 != 0xff {
		t.Errorf("Unexpected pixel %x %x %x %x", r>>8, g>>8, b>>8, a>>8)
	}

	def, err := Render("#000000", 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(def))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != DefaultSize {
		t.Errorf("Expected default size %d, got %d", DefaultSize, cfg.Width)
	}
}
