package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shoe-studio/internal/canvas"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	bases := c.Items(KindBase)
	require.NotEmpty(t, bases)
	for _, it := range bases {
		assert.Equal(t, KindBase, it.Kind)
	}

	leather, ok := c.Item("leather1")
	require.True(t, ok)
	assert.True(t, leather.Kind.IsReference())
	assert.Equal(t, "/materials/leather1.jpeg", leather.Path)

	assert.Len(t, c.Items(""), len(c.items))
	assert.Contains(t, c.Rules().TemplateFolders, "/sketchs/men/")
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "items: [",
		"missing path": "items:\n  - id: a\n    kind: base\n",
		"bad kind":     "items:\n  - id: a\n    kind: sole\n    path: /a.png\n",
		"duplicate id": "items:\n  - id: a\n    kind: base\n    path: /a.png\n  - id: a\n    kind: base\n    path: /b.png\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "catalog.yaml")
	doc := "recognition:\n  template_folders: [/bases/]\nitems:\n  - id: x\n    kind: strap\n    name: X\n    path: parts/x.png\n"
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	c, err := Load(p)
	require.NoError(t, err)
	it, ok := c.Item("x")
	require.True(t, ok)
	assert.Equal(t, "/parts/x.png", it.Path, "paths are rooted")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_MissingRecognitionUsesDefaults(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, def.Rules().TemplateFolders)

	c, err := Parse([]byte("items:\n  - id: x\n    kind: base\n    name: X\n    path: bases/x.png\n"))
	require.NoError(t, err)
	assert.Equal(t, def.Rules(), c.Rules())

	c, err = Parse([]byte("recognition:\n  template_names: [x.png]\nitems: []\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x.png"}, c.Rules().TemplateNames)
	assert.Empty(t, c.Rules().TemplateFolders)
}

func TestRecognizer(t *testing.T) {
	r := NewRecognizer(RecognitionRules{
		TemplateFolders: []string{"/sketchs/men/", "/sketchs/women/"},
		TemplateNames:   []string{"loafer", "Heel"},
	})

	tests := []struct {
		name  string
		asset canvas.Asset
		want  bool
	}{
		{
			name:  "tagged men template",
			asset: canvas.Asset{Name: "x.png", Meta: map[string]string{canvas.MetaOriginalPath: "/sketchs/men/loafer.JPG"}},
			want:  true,
		},
		{
			name:  "tagged path outside template folders ignores name",
			asset: canvas.Asset{Name: "loafer.png", Meta: map[string]string{canvas.MetaOriginalPath: "/parts/strap1.png"}},
			want:  false,
		},
		{
			name:  "legacy asset by name",
			asset: canvas.Asset{Name: "HEEL.JPG"},
			want:  true,
		},
		{
			name:  "legacy asset by url",
			asset: canvas.Asset{Name: "image.jpg", Src: "https://cdn.example.com/loafer-v2.jpg"},
			want:  true,
		},
		{
			name:  "arbitrary upload",
			asset: canvas.Asset{Name: "cat.png", Src: "https://cdn.example.com/cat.png"},
			want:  false,
		},
		{
			name:  "data uri is never matched by content",
			asset: canvas.Asset{Name: "upload.png", Src: "data:image/png;base64,bG9hZmVy"},
			want:  false,
		},
		{
			name:  "generated result",
			asset: canvas.Asset{Name: "loafer.png", Meta: map[string]string{canvas.MetaKind: canvas.KindResult}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsBaseTemplate(tt.asset))
		})
	}
}

func TestRecognizer_ContainsBaseTemplate(t *testing.T) {
	r := NewRecognizer(RecognitionRules{TemplateFolders: []string{"/sketchs/men/"}})
	assets := map[string]canvas.Asset{
		"a1": {ID: "a1", Meta: map[string]string{canvas.MetaOriginalPath: "/parts/button1.png"}},
		"a2": {ID: "a2", Meta: map[string]string{canvas.MetaOriginalPath: "/sketchs/men/loafer.JPG"}},
	}
	lookup := func(id string) (canvas.Asset, bool) {
		a, ok := assets[id]
		return a, ok
	}

	parts := []canvas.Shape{{Type: canvas.ShapeImage, AssetID: "a1"}, {Type: canvas.ShapeImage, AssetID: "missing"}}
	assert.False(t, r.ContainsBaseTemplate(parts, lookup))

	withBase := append(parts, canvas.Shape{Type: canvas.ShapeImage, AssetID: "a2"})
	assert.True(t, r.ContainsBaseTemplate(withBase, lookup))
}

func TestMimeTypes(t *testing.T) {
	m, ok := MimeTypeForPath("/materials/leather1.JPEG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", m)

	_, ok = MimeTypeForPath("/materials/leather1")
	assert.False(t, ok)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}
	assert.Equal(t, "image/png", DetectMimeType("blob", png))
	assert.Equal(t, "image/webp", DetectMimeType("x.webp", nil))
	assert.Equal(t, "", DetectMimeType("notes.txt", []byte("hello")))
}
