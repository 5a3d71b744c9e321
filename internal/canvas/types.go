// Package canvas describes the whiteboard editing engine consumed by the transform
// pipeline and provides an in-memory implementation of it.
package canvas

import (
	"context"
	"errors"

	"go-shoe-studio/internal/geometry"
)

// ShapeType is the kind of a canvas element.
type ShapeType string

const (
	ShapeImage ShapeType = "image"
	ShapeGeo   ShapeType = "geo"
	ShapeText  ShapeType = "text"
	ShapeFrame ShapeType = "frame"
)

// Asset metadata keys.
const (
	MetaOriginalPath = "originalPath"
	MetaKind         = "kind"
)

// Asset kinds recorded under MetaKind.
const (
	KindTemplate = "template"
	KindResult   = "result"
	KindUpload   = "upload"
)

var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUnsupportedShape = errors.New("unsupported shape for export")
	ErrNothingToExport  = errors.New("no shapes to export")
	ErrInvalidShapeSpec = errors.New("invalid shape spec")
	ErrAssetDataMissing = errors.New("asset has no raster data")
	ErrDuplicateAssetID = errors.New("duplicate asset id")
)

// Shape is a positioned visual element owned by the engine's document store.
// W and H are meaningful for raster shapes.
type Shape struct {
	ID      string            `json:"id"`
	Type    ShapeType         `json:"type"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	W       float64           `json:"w,omitempty"`
	H       float64           `json:"h,omitempty"`
	AssetID string            `json:"asset_id,omitempty"`
	Props   map[string]string `json:"props,omitempty"`
}

// Bounds returns the shape's bounding box in document space.
func (s Shape) Bounds() geometry.Rect {
	return geometry.NewRect(s.X, s.Y, s.W, s.H)
}

// IsImage reports whether the shape is a raster image.
func (s Shape) IsImage() bool {
	return s.Type == ShapeImage
}

// ShapeSpec describes a shape to create; the engine assigns the id.
type ShapeSpec struct {
	Type    ShapeType
	X, Y    float64
	W, H    float64
	AssetID string
	Props   map[string]string
}

// Asset is a named binary image resource referenced by image shapes.
type Asset struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Src      string            `json:"src"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	MimeType string            `json:"mime_type"`
	Meta     map[string]string `json:"meta,omitempty"`
	Data     []byte            `json:"-"`
}

// OriginalPath returns the template path tag, if any.
func (a Asset) OriginalPath() (string, bool) {
	p, ok := a.Meta[MetaOriginalPath]
	return p, ok && p != ""
}

// Camera is the viewport position and zoom.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"z"`
}

// DefaultCamera is where the viewport goes after new content is placed.
var DefaultCamera = Camera{X: 0, Y: 0, Zoom: 1.5}

// ExportedImage is a flattened raster of a set of shapes.
type ExportedImage struct {
	URL      string
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// ChangeKind classifies store mutations.
type ChangeKind string

const (
	ChangeAssetsCreated ChangeKind = "assets_created"
	ChangeShapesCreated ChangeKind = "shapes_created"
	ChangeCamera        ChangeKind = "camera"
)

// Change is delivered to subscribers after a mutation commits.
type Change struct {
	Kind ChangeKind
	IDs  []string
}

// Engine is the canvas editing capability the pipeline consumes.
type Engine interface {
	ListShapes() []Shape
	Asset(id string) (Asset, bool)
	CreateAssets(ctx context.Context, assets []Asset) error
	CreateShapes(specs []ShapeSpec) ([]Shape, error)
	ExportShapesToImage(ctx context.Context, shapes []Shape) (*ExportedImage, error)
	SetViewport(cam Camera)
	Viewport() Camera
	Subscribe(fn func(Change)) (unsubscribe func())
}
