package validation

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageThresholds bounds what may be placed on a canvas
type ImageThresholds struct {
	MinWidth       int
	MinHeight      int
	MaxWidth       int
	MaxHeight      int
	MaxTotalPixels int
	MaxBytes       int
}

// DefaultImageThresholds returns the default upload limits
func DefaultImageThresholds() ImageThresholds {
	return ImageThresholds{
		MinWidth:       16,
		MinHeight:      16,
		MaxWidth:       8192,
		MaxHeight:      8192,
		MaxTotalPixels: 40_000_000,
		MaxBytes:       10 << 20,
	}
}

// ImageValidator checks uploaded images before they become canvas assets
type ImageValidator struct {
	thresholds ImageThresholds
}

// NewImageValidator creates a validator with default thresholds
func NewImageValidator() *ImageValidator {
	return &ImageValidator{thresholds: DefaultImageThresholds()}
}

// NewImageValidatorWithThresholds creates a validator with custom thresholds
func NewImageValidatorWithThresholds(thresholds ImageThresholds) *ImageValidator {
	return &ImageValidator{thresholds: thresholds}
}

// ImageIssue represents an image validation issue
type ImageIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// Validate decodes the image header and reports size problems
func (v *ImageValidator) Validate(data []byte) []ImageIssue {
	var issues []ImageIssue

	if v.thresholds.MaxBytes > 0 && len(data) > v.thresholds.MaxBytes {
		return append(issues, ImageIssue{
			Type:        "file_size",
			Message:     "Image file is too large.",
			Severity:    "error",
			ActualValue: float64(len(data)),
			Threshold:   float64(v.thresholds.MaxBytes),
		})
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return append(issues, ImageIssue{
			Type:     "format",
			Message:  "File is not a supported image (PNG, JPEG, GIF or WebP).",
			Severity: "error",
		})
	}

	if cfg.Width < v.thresholds.MinWidth || cfg.Height < v.thresholds.MinHeight {
		issues = append(issues, ImageIssue{
			Type:        "too_small",
			Message:     "Image is too small to be useful on the canvas.",
			Severity:    "error",
			ActualValue: float64(min(cfg.Width, cfg.Height)),
			Threshold:   float64(min(v.thresholds.MinWidth, v.thresholds.MinHeight)),
		})
	}

	if cfg.Width > v.thresholds.MaxWidth || cfg.Height > v.thresholds.MaxHeight {
		issues = append(issues, ImageIssue{
			Type:        "too_large",
			Message:     "Image dimensions exceed the limit.",
			Severity:    "error",
			ActualValue: float64(max(cfg.Width, cfg.Height)),
			Threshold:   float64(max(v.thresholds.MaxWidth, v.thresholds.MaxHeight)),
		})
	} else if v.thresholds.MaxTotalPixels > 0 && cfg.Width*cfg.Height > v.thresholds.MaxTotalPixels {
		issues = append(issues, ImageIssue{
			Type:        "too_many_pixels",
			Message:     "Image has too many pixels.",
			Severity:    "error",
			ActualValue: float64(cfg.Width * cfg.Height),
			Threshold:   float64(v.thresholds.MaxTotalPixels),
		})
	}

	// Very elongated images export poorly into the sketch area
	if cfg.Width > 0 && cfg.Height > 0 {
		ratio := float64(cfg.Width) / float64(cfg.Height)
		if ratio > 8 || ratio < 1.0/8 {
			issues = append(issues, ImageIssue{
				Type:        "aspect_ratio",
				Message:     "Image is unusually narrow or wide.",
				Severity:    "warning",
				ActualValue: ratio,
			})
		}
	}

	return issues
}

// ConvertIssuesToMessages converts issues to simple messages
func (v *ImageValidator) ConvertIssuesToMessages(issues []ImageIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any error severity issues
func (v *ImageValidator) HasCriticalIssues(issues []ImageIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
