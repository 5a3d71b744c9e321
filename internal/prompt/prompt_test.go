package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shoe-studio/internal/catalog"
	"go-shoe-studio/internal/genai"
)

var (
	base   = genai.InlineImage{Data: []byte("base"), MimeType: "image/png"}
	swatch = genai.InlineImage{Data: []byte("swatch"), MimeType: "image/png"}
	refImg = genai.InlineImage{Data: []byte("leather"), MimeType: "image/jpeg"}
)

func TestInstruction_Clauses(t *testing.T) {
	plain := Instruction("", nil)
	assert.Equal(t, BaseInstruction, plain)
	assert.NotContains(t, plain, "color")
	assert.NotContains(t, plain, "reference")

	colored := Instruction("#112233", nil)
	assert.True(t, strings.HasPrefix(colored, strings.TrimSuffix(BaseInstruction, ".")))
	assert.Contains(t, colored, "with the color #112233")
	assert.NotContains(t, colored, "reference image")

	leather := Instruction("", &Reference{Kind: catalog.KindLeather})
	assert.Contains(t, leather, "leather material shown in the reference image")
	assert.NotContains(t, leather, "#")

	pattern := Instruction("#ABC000", &Reference{Kind: catalog.KindPattern})
	assert.Contains(t, pattern, "with the color #ABC000 using the pattern shown in the reference image.")
}

func TestAssemble_ImageOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want []genai.InlineImage
	}{
		{"base only", Inputs{Base: base}, []genai.InlineImage{base}},
		{"with color", Inputs{Base: base, Color: "#112233", Swatch: &swatch}, []genai.InlineImage{base, swatch}},
		{"with reference", Inputs{Base: base, Reference: &Reference{Kind: catalog.KindLeather, Image: refImg}},
			[]genai.InlineImage{base, refImg}},
		{"all", Inputs{Base: base, Color: "#112233", Swatch: &swatch, Reference: &Reference{Kind: catalog.KindPattern, Image: refImg}},
			[]genai.InlineImage{base, swatch, refImg}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Assemble(tt.in)
			require.NoError(t, req.Validate())
			assert.Equal(t, tt.want, req.Images)
		})
	}
}

func TestAssemble_ColorWithoutSwatchDropsClause(t *testing.T) {
	req := Assemble(Inputs{Base: base, Color: "#112233"})
	assert.Len(t, req.Images, 1)
	assert.NotContains(t, req.Instruction, "#112233")
}
