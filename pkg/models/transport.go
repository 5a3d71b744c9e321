package models

import (
	"go-shoe-studio/internal/canvas"
	"go-shoe-studio/internal/catalog"
	"go-shoe-studio/internal/geometry"
	"go-shoe-studio/internal/repository"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ColorRequest selects a swatch color
type ColorRequest struct {
	Color string `json:"color"`
}

// ColorResponse echoes the normalized selection. Color is empty when the input
// was rejected.
type ColorResponse struct {
	Color   string `json:"color"`
	Warning string `json:"warning,omitempty"`
}

// ReferenceRequest selects a pattern or leather reference
type ReferenceRequest struct {
	Item string `json:"item" binding:"required"`
}

// SessionState is the design tab state
type SessionState struct {
	ID           string          `json:"id"`
	OpenPanel    string          `json:"open_panel"`
	Panels       map[string]bool `json:"panels"`
	Color        string          `json:"color,omitempty"`
	Reference    *catalog.Item   `json:"reference,omitempty"`
	Loading      bool            `json:"loading"`
	CanTransform bool            `json:"can_transform"`
	Camera       canvas.Camera   `json:"camera"`
	SketchArea   geometry.Rect   `json:"sketch_area"`
	ShapeCount   int             `json:"shape_count"`
}

// PanelResponse reports the panel open after a toggle
type PanelResponse struct {
	OpenPanel string          `json:"open_panel"`
	Panels    map[string]bool `json:"panels"`
}

// PlacedImage is an image shape with its asset
type PlacedImage struct {
	Shape  canvas.Shape  `json:"shape"`
	Asset  canvas.Asset  `json:"asset"`
	Camera canvas.Camera `json:"camera"`
}

// UploadResponse is returned after an upload
type UploadResponse struct {
	PlacedImage
	Warnings []string `json:"warnings,omitempty"`
}

// TransformResponse is returned after a successful transform
type TransformResponse struct {
	RecordID    string        `json:"record_id"`
	Shape       canvas.Shape  `json:"shape"`
	Asset       canvas.Asset  `json:"asset"`
	Camera      canvas.Camera `json:"camera"`
	Instruction string        `json:"instruction"`
	ImageCount  int           `json:"image_count"`
	Text        string        `json:"text,omitempty"`
	DurationMS  int64         `json:"duration_ms"`
}

// HistoryResponse lists a session's transform attempts
type HistoryResponse struct {
	SessionID string                        `json:"session_id"`
	Records   []*repository.TransformRecord `json:"records"`
}

// ShapesResponse lists shapes
type ShapesResponse struct {
	Shapes []canvas.Shape `json:"shapes"`
}

// TemplatesResponse lists catalog items
type TemplatesResponse struct {
	Items []catalog.Item `json:"items"`
}

// MoodboardResponse describes a moodboard
type MoodboardResponse struct {
	ID      string            `json:"id"`
	Regions []geometry.Region `json:"regions"`
	Shapes  int               `json:"shape_count"`
}
