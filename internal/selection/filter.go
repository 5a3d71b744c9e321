// Package selection decides which canvas shapes belong to a region.
package selection

import (
	"fmt"

	"go-shoe-studio/internal/canvas"
	"go-shoe-studio/internal/geometry"
)

// Policy selects the spatial predicate used by Filter.
type Policy int

const (
	// Overlap keeps shapes whose bounds intersect the region. Used for export.
	Overlap Policy = iota
	// FullContainment keeps shapes lying entirely inside the region. Used to
	// decide whether the transform trigger is offered.
	FullContainment
)

func (p Policy) String() string {
	switch p {
	case Overlap:
		return "overlap"
	case FullContainment:
		return "full_containment"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a textual policy name.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "overlap":
		return Overlap, nil
	case "full_containment", "contain":
		return FullContainment, nil
	default:
		return Overlap, fmt.Errorf("unknown selection policy %q", s)
	}
}

// Matches reports whether a single shape satisfies the policy for region.
// Only image shapes can match.
func (p Policy) Matches(s canvas.Shape, region geometry.Rect) bool {
	if !s.IsImage() {
		return false
	}
	switch p {
	case FullContainment:
		return geometry.FullyContains(region, s.Bounds())
	default:
		return geometry.Overlaps(s.Bounds(), region)
	}
}

// Filter returns the image shapes satisfying policy, in their original order.
// It never mutates its input.
func Filter(shapes []canvas.Shape, region geometry.Rect, policy Policy) []canvas.Shape {
	out := make([]canvas.Shape, 0, len(shapes))
	for _, s := range shapes {
		if policy.Matches(s, region) {
			out = append(out, s)
		}
	}
	return out
}

// CanTransform reports whether at least one image lies fully inside region.
func CanTransform(shapes []canvas.Shape, region geometry.Rect) bool {
	for _, s := range shapes {
		if FullContainment.Matches(s, region) {
			return true
		}
	}
	return false
}
