package catalog

import (
	"strings"

	"go-shoe-studio/internal/canvas"
)

// Recognizer decides whether canvas assets are base templates.
type Recognizer struct {
	folders []string
	names   []string
}

// NewRecognizer builds a recognizer from rules. Matching is case-insensitive.
func NewRecognizer(rules RecognitionRules) *Recognizer {
	return &Recognizer{
		folders: lowerAll(rules.TemplateFolders),
		names:   lowerAll(rules.TemplateNames),
	}
}

// IsBaseTemplate applies the recognition policy to one asset. An asset tagged
// with an original path is judged by that path alone. Untagged assets, created
// before the tag existed, fall back to name substrings in the display name or
// source URL.
func (r *Recognizer) IsBaseTemplate(a canvas.Asset) bool {
	if p, ok := a.OriginalPath(); ok {
		return containsAny(strings.ToLower(p), r.folders)
	}
	if a.Meta[canvas.MetaKind] == canvas.KindResult {
		return false
	}
	return containsAny(strings.ToLower(a.Name), r.names) ||
		(!strings.HasPrefix(a.Src, "data:") && containsAny(strings.ToLower(a.Src), r.names))
}

// ContainsBaseTemplate reports whether any image shape references a base
// template asset.
func (r *Recognizer) ContainsBaseTemplate(shapes []canvas.Shape, lookup func(id string) (canvas.Asset, bool)) bool {
	for _, s := range shapes {
		if !s.IsImage() {
			continue
		}
		a, ok := lookup(s.AssetID)
		if ok && r.IsBaseTemplate(a) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
