// Package prompt builds the instruction text and image list for a transform.
package prompt

import (
	"strings"

	"go-shoe-studio/internal/catalog"
	"go-shoe-studio/internal/genai"
)

// BaseInstruction is always sent.
const BaseInstruction = "Please transform the sketch image into a realistic shoe image, " +
	"preserving as much of the original sketch's details and design as possible " +
	"without additional inference or creative changes."

// Reference is a selected material or pattern image.
type Reference struct {
	Kind  catalog.Kind
	Image genai.InlineImage
}

// Inputs are everything that shapes one transform request.
type Inputs struct {
	Base      genai.InlineImage
	Color     string // normalized #RRGGBB, empty when no color is selected
	Swatch    *genai.InlineImage
	Reference *Reference
}

// Instruction returns the base instruction with a color clause iff a color is
// selected and a reference clause iff a reference is selected.
func Instruction(color string, ref *Reference) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(BaseInstruction, "."))
	if color != "" {
		b.WriteString(" with the color ")
		b.WriteString(color)
	}
	if ref != nil {
		b.WriteString(referenceClause(ref.Kind))
	}
	b.WriteString(".")
	if color != "" {
		b.WriteString(" A solid swatch of ")
		b.WriteString(color)
		b.WriteString(" is attached; match that exact color.")
	}
	return b.String()
}

func referenceClause(k catalog.Kind) string {
	if k == catalog.KindPattern {
		return " using the pattern shown in the reference image"
	}
	return " using the leather material shown in the reference image"
}

// Assemble returns the request: base image first, then the swatch, then the
// reference.
func Assemble(in Inputs) genai.Request {
	images := make([]genai.InlineImage, 0, 3)
	images = append(images, in.Base)
	color := in.Color
	if in.Swatch == nil {
		color = ""
	}
	if color != "" {
		images = append(images, *in.Swatch)
	}
	if in.Reference != nil {
		images = append(images, in.Reference.Image)
	}
	return genai.Request{
		Instruction: Instruction(color, in.Reference),
		Images:      images,
	}
}
