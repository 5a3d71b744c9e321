package canvas

import (
	"bytes"
	"image"
	"path"

	"github.com/google/uuid"
)

// Placement of newly loaded template parts and of transform results.
const (
	TemplateX      = 200.0
	TemplateY      = 200.0
	TemplateWidth  = 300.0
	TemplateHeight = 200.0

	ResultWidth  = 400.0
	ResultHeight = 300.0
)

func newAssetID() string {
	return "asset:" + uuid.NewString()
}

// NewTemplateAsset builds an asset for a catalog item. templatePath is the
// catalog path of the source image and is recorded as the original path, which
// base-template recognition relies on.
func NewTemplateAsset(templatePath, src, mimeType string, data []byte) Asset {
	w, h := dimensions(data, int(TemplateWidth), int(TemplateHeight))
	return Asset{
		ID:       newAssetID(),
		Name:     path.Base(templatePath),
		Src:      src,
		Width:    w,
		Height:   h,
		MimeType: mimeType,
		Meta: map[string]string{
			MetaKind:         KindTemplate,
			MetaOriginalPath: templatePath,
		},
		Data: data,
	}
}

// NewResultAsset builds an asset for a generated image.
func NewResultAsset(mimeType string, data []byte) Asset {
	w, h := dimensions(data, int(ResultWidth), int(ResultHeight))
	return Asset{
		ID:       newAssetID(),
		Name:     "exported-image" + extensionFor(mimeType),
		Src:      DataURI(mimeType, data),
		Width:    w,
		Height:   h,
		MimeType: mimeType,
		Meta:     map[string]string{MetaKind: KindResult},
		Data:     data,
	}
}

// NewUploadAsset builds an asset for a user supplied image. Uploads carry no
// original path.
func NewUploadAsset(name, mimeType string, data []byte) Asset {
	w, h := dimensions(data, 0, 0)
	return Asset{
		ID:       newAssetID(),
		Name:     name,
		Src:      DataURI(mimeType, data),
		Width:    w,
		Height:   h,
		MimeType: mimeType,
		Meta:     map[string]string{MetaKind: KindUpload},
		Data:     data,
	}
}

// ImageSpec returns a spec placing asset a as an image shape.
func ImageSpec(a Asset, x, y, w, h float64) ShapeSpec {
	return ShapeSpec{Type: ShapeImage, X: x, Y: y, W: w, H: h, AssetID: a.ID}
}

func dimensions(data []byte, fallbackW, fallbackH int) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fallbackW, fallbackH
	}
	return cfg.Width, cfg.Height
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
