package canvas

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"runtime"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"go-shoe-studio/internal/geometry"
)

// maxExportDim caps the longer side of an exported raster.
const maxExportDim = 4096

// ExportShapesToImage flattens the given image shapes, in order, onto a white
// background covering their union bounding box and returns a PNG.
func (d *Document) ExportShapesToImage(ctx context.Context, shapes []Shape) (*ExportedImage, error) {
	if len(shapes) == 0 {
		return nil, ErrNothingToExport
	}

	type layer struct {
		shape Shape
		asset Asset
	}
	layers := make([]layer, 0, len(shapes))
	var bounds geometry.Rect

	d.mu.RLock()
	for _, s := range shapes {
		if !s.IsImage() {
			d.mu.RUnlock()
			return nil, fmt.Errorf("export %s: %w: %s", s.ID, ErrUnsupportedShape, s.Type)
		}
		a, ok := d.assets[s.AssetID]
		if !ok {
			d.mu.RUnlock()
			return nil, fmt.Errorf("export %s: %w: %s", s.ID, ErrAssetNotFound, s.AssetID)
		}
		if len(a.Data) == 0 {
			d.mu.RUnlock()
			return nil, fmt.Errorf("export %s: %w: %s", s.ID, ErrAssetDataMissing, a.ID)
		}
		layers = append(layers, layer{shape: s, asset: a})
		bounds = geometry.Union(bounds, s.Bounds())
	}
	d.mu.RUnlock()

	if !bounds.Finite() {
		return nil, fmt.Errorf("export: %w: non-finite bounds", ErrInvalidShapeSpec)
	}
	if bounds.Empty() {
		return nil, ErrNothingToExport
	}

	scale := 1.0
	if longest := math.Max(bounds.Width, bounds.Height); longest > maxExportDim {
		scale = maxExportDim / longest
	}
	width := int(math.Ceil(bounds.Width * scale))
	height := int(math.Ceil(bounds.Height * scale))

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// Decode concurrently, composite in order.
	decoded := make([]*image.RGBA, len(layers))
	errs := make([]error, len(layers))
	pool := NewWorkerPool(min(len(layers), runtime.NumCPU()))
	pool.Start()
	for i, l := range layers {
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			src, _, err := image.Decode(bytes.NewReader(l.asset.Data))
			if err != nil {
				errs[i] = fmt.Errorf("export %s: decode asset %s: %w", l.shape.ID, l.asset.ID, err)
				return
			}
			decoded[i] = clone.AsRGBA(src)
		})
	}
	pool.Wait()
	pool.Close()

	for i, l := range layers {
		if errs[i] != nil {
			return nil, errs[i]
		}
		target := image.Rect(
			int(math.Round((l.shape.X-bounds.X)*scale)),
			int(math.Round((l.shape.Y-bounds.Y)*scale)),
			int(math.Round((l.shape.X-bounds.X+l.shape.W)*scale)),
			int(math.Round((l.shape.Y-bounds.Y+l.shape.H)*scale)),
		)
		draw.CatmullRom.Scale(dst, target, decoded[i], decoded[i].Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("export: encode png: %w", err)
	}
	data := buf.Bytes()
	return &ExportedImage{
		URL:      DataURI("image/png", data),
		Data:     data,
		MimeType: "image/png",
		Width:    width,
		Height:   height,
	}, nil
}

// DataURI encodes bytes as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI into its MIME type and bytes.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data uri is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return mimeType, data, nil
}
