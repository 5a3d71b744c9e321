package canvas

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDocument_CreateAndList(t *testing.T) {
	doc := NewDocument()
	ctx := context.Background()

	asset := NewTemplateAsset("/sketchs/men/loafer.png", "/sketchs/men/loafer.png", "image/png", solidPNG(t, 30, 20, color.Black))
	require.NoError(t, doc.CreateAssets(ctx, []Asset{asset}))

	shapes, err := doc.CreateShapes([]ShapeSpec{
		ImageSpec(asset, TemplateX, TemplateY, TemplateWidth, TemplateHeight),
		{Type: ShapeText, X: 10, Y: 10, Props: map[string]string{"text": "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	assert.NotEqual(t, shapes[0].ID, shapes[1].ID)

	listed := doc.ListShapes()
	require.Len(t, listed, 2)
	assert.Equal(t, ShapeImage, listed[0].Type, "document order is insertion order")
	assert.Equal(t, ShapeText, listed[1].Type)

	got, ok := doc.Asset(asset.ID)
	require.True(t, ok)
	assert.Equal(t, 30, got.Width)
	p, ok := got.OriginalPath()
	assert.True(t, ok)
	assert.Equal(t, "/sketchs/men/loafer.png", p)
}

func TestDocument_CreateShapesValidation(t *testing.T) {
	doc := NewDocument()

	_, err := doc.CreateShapes([]ShapeSpec{{Type: ShapeImage, AssetID: "asset:missing", W: 1, H: 1}})
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = doc.CreateShapes([]ShapeSpec{{X: 1}})
	assert.ErrorIs(t, err, ErrInvalidShapeSpec)

	assert.Empty(t, doc.ListShapes(), "failed batches must not leave shapes behind")
}

func TestDocument_DuplicateAssets(t *testing.T) {
	doc := NewDocument()
	ctx := context.Background()
	a := NewUploadAsset("a.png", "image/png", solidPNG(t, 2, 2, color.White))

	require.NoError(t, doc.CreateAssets(ctx, []Asset{a}))
	assert.ErrorIs(t, doc.CreateAssets(ctx, []Asset{a}), ErrDuplicateAssetID)
}

func TestDocument_Subscribe(t *testing.T) {
	doc := NewDocument()
	var changes []Change
	unsubscribe := doc.Subscribe(func(c Change) { changes = append(changes, c) })

	doc.SetViewport(DefaultCamera)
	_, err := doc.CreateShapes([]ShapeSpec{{Type: ShapeGeo, W: 1, H: 1}})
	require.NoError(t, err)

	require.Len(t, changes, 2)
	assert.Equal(t, ChangeCamera, changes[0].Kind)
	assert.Equal(t, ChangeShapesCreated, changes[1].Kind)
	assert.Equal(t, DefaultCamera, doc.Viewport())

	unsubscribe()
	doc.SetViewport(Camera{Zoom: 2})
	assert.Len(t, changes, 2)
}

func TestDocument_Export(t *testing.T) {
	doc := NewDocument()
	ctx := context.Background()

	red := NewUploadAsset("red.png", "image/png", solidPNG(t, 10, 10, color.RGBA{R: 255, A: 255}))
	blue := NewUploadAsset("blue.png", "image/png", solidPNG(t, 10, 10, color.RGBA{B: 255, A: 255}))
	require.NoError(t, doc.CreateAssets(ctx, []Asset{red, blue}))

	shapes, err := doc.CreateShapes([]ShapeSpec{
		ImageSpec(red, 0, 0, 40, 40),
		ImageSpec(blue, 60, 0, 40, 40),
	})
	require.NoError(t, err)

	out, err := doc.ExportShapesToImage(ctx, shapes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MimeType)
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 40, out.Height)

	img, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	r, _, b, _ := img.At(20, 20).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Less(t, b, uint32(0x1000))
	r, g, b, _ := img.At(50, 20).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "gap is white background")
	r, _, b, _ = img.At(80, 20).RGBA()
	assert.Greater(t, b, uint32(0xf000))
	assert.Less(t, r, uint32(0x1000))

	mime, data, err := ParseDataURI(out.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, out.Data, data)
}

func TestDocument_ExportFailures(t *testing.T) {
	doc := NewDocument()
	ctx := context.Background()

	_, err := doc.ExportShapesToImage(ctx, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)

	geo, err := doc.CreateShapes([]ShapeSpec{{Type: ShapeGeo, W: 10, H: 10}})
	require.NoError(t, err)
	_, err = doc.ExportShapesToImage(ctx, geo)
	assert.ErrorIs(t, err, ErrUnsupportedShape)

	bare := Asset{ID: "asset:bare", Name: "bare.png", MimeType: "image/png"}
	require.NoError(t, doc.CreateAssets(ctx, []Asset{bare}))
	shapes, err := doc.CreateShapes([]ShapeSpec{ImageSpec(bare, 0, 0, 10, 10)})
	require.NoError(t, err)
	_, err = doc.ExportShapesToImage(ctx, shapes)
	assert.ErrorIs(t, err, ErrAssetDataMissing)
}

func TestDocument_NonFiniteGeometry(t *testing.T) {
	doc := NewDocument()
	ctx := context.Background()
	asset := NewUploadAsset("a.png", "image/png", solidPNG(t, 20, 20, color.Black))
	require.NoError(t, doc.CreateAssets(ctx, []Asset{asset}))

	for _, spec := range []ShapeSpec{
		ImageSpec(asset, 0, 0, math.Inf(1), 30),
		ImageSpec(asset, 0, 0, math.NaN(), 30),
		ImageSpec(asset, math.Inf(-1), 0, 10, 10),
		ImageSpec(asset, 0, math.NaN(), 10, 10),
	} {
		_, err := doc.CreateShapes([]ShapeSpec{spec})
		assert.ErrorIs(t, err, ErrInvalidShapeSpec)
	}
	assert.Empty(t, doc.ListShapes(), "rejected specs leave the store untouched")

	// shapes that reach export from elsewhere still fail cleanly
	bad := []Shape{{ID: "shape:x", Type: ShapeImage, X: 0, Y: 0, W: math.Inf(1), H: 30, AssetID: asset.ID}}
	_, err := doc.ExportShapesToImage(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidShapeSpec)
}

func TestSeedMoodboard(t *testing.T) {
	doc := NewDocument()

	seeded, err := SeedMoodboard(doc)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, doc.ListShapes(), 18)

	seeded, err = SeedMoodboard(doc)
	require.NoError(t, err)
	assert.False(t, seeded, "seeding only happens on an empty board")
	assert.Len(t, doc.ListShapes(), 18)
}

func TestParseDataURI_Invalid(t *testing.T) {
	for _, in := range []string{"http://x/y.png", "data:image/png;base64", "data:image/png,abc", "data:image/png;base64,@@"} {
		_, _, err := ParseDataURI(in)
		assert.Error(t, err, in)
	}
}
