package validation

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func issueTypes(issues []ImageIssue) map[string]bool {
	out := make(map[string]bool, len(issues))
	for _, i := range issues {
		out[i.Type] = true
	}
	return out
}

func TestImageValidator_Valid(t *testing.T) {
	v := NewImageValidator()
	issues := v.Validate(encodePNG(t, 300, 200))
	if len(issues) > 0 {
		t.Errorf("Expected no issues, got: %v", issues)
	}
	if v.HasCriticalIssues(issues) {
		t.Error("Expected no critical issues")
	}
}

func TestImageValidator_Issues(t *testing.T) {
	v := NewImageValidatorWithThresholds(ImageThresholds{
		MinWidth: 16, MinHeight: 16, MaxWidth: 500, MaxHeight: 500, MaxTotalPixels: 100_000, MaxBytes: 1 << 20,
	})

	tests := []struct {
		name     string
		data     []byte
		want     string
		critical bool
	}{
		{"not an image", []byte("hello"), "format", true},
		{"too small", encodePNG(t, 8, 8), "too_small", true},
		{"too large", encodePNG(t, 600, 100), "too_large", true},
		{"too many pixels", encodePNG(t, 400, 400), "too_many_pixels", true},
		{"elongated", encodePNG(t, 450, 20), "aspect_ratio", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := v.Validate(tt.data)
			if !issueTypes(issues)[tt.want] {
				t.Errorf("Expected issue %s, got %v", tt.want, issues)
			}
			if v.HasCriticalIssues(issues) != tt.critical {
				t.Errorf("Expected critical=%v, got %v", tt.critical, issues)
			}
		})
	}
}

func TestImageValidator_FileSize(t *testing.T) {
	v := NewImageValidatorWithThresholds(ImageThresholds{MaxBytes: 10})
	issues := v.Validate(encodePNG(t, 20, 20))
	if len(issues) != 1 || issues[0].Type != "file_size" {
		t.Errorf("Expected a single file_size issue, got %v", issues)
	}
	if msgs := v.ConvertIssuesToMessages(issues); len(msgs) != 1 || msgs[0] == "" {
		t.Errorf("Expected one message, got %v", msgs)
	}
}
