package canvas

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-shoe-studio/internal/geometry"
)

// Document is an in-memory Engine: an ordered shape store, an asset store and
// a camera. Shapes keep insertion order.
type Document struct {
	mu     sync.RWMutex
	shapes []Shape
	assets map[string]Asset
	camera Camera

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		assets: make(map[string]Asset),
		camera: Camera{Zoom: 1},
		subs:   make(map[int]func(Change)),
	}
}

// ListShapes returns a snapshot of all shapes in document order.
func (d *Document) ListShapes() []Shape {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Shape, len(d.shapes))
	copy(out, d.shapes)
	return out
}

// Asset looks up an asset by id.
func (d *Document) Asset(id string) (Asset, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.assets[id]
	return a, ok
}

// CreateAssets adds assets to the store. The whole batch is rejected if any id
// is empty or already present.
func (d *Document) CreateAssets(ctx context.Context, assets []Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	ids := make([]string, 0, len(assets))
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if a.ID == "" {
			d.mu.Unlock()
			return fmt.Errorf("create assets: %w: empty id", ErrInvalidShapeSpec)
		}
		if _, exists := d.assets[a.ID]; exists || seen[a.ID] {
			d.mu.Unlock()
			return fmt.Errorf("create assets: %w: %s", ErrDuplicateAssetID, a.ID)
		}
		seen[a.ID] = true
	}
	for _, a := range assets {
		d.assets[a.ID] = a
		ids = append(ids, a.ID)
	}
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeAssetsCreated, IDs: ids})
	return nil
}

// CreateShapes appends shapes built from specs and returns them with their ids.
// Image shapes must reference an existing asset.
func (d *Document) CreateShapes(specs []ShapeSpec) ([]Shape, error) {
	d.mu.Lock()
	created := make([]Shape, 0, len(specs))
	for _, s := range specs {
		if s.Type == "" {
			d.mu.Unlock()
			return nil, fmt.Errorf("create shapes: %w: missing type", ErrInvalidShapeSpec)
		}
		if !geometry.NewRect(s.X, s.Y, s.W, s.H).Finite() {
			d.mu.Unlock()
			return nil, fmt.Errorf("create shapes: %w: non-finite position or size", ErrInvalidShapeSpec)
		}
		if s.Type == ShapeImage {
			if _, ok := d.assets[s.AssetID]; !ok {
				d.mu.Unlock()
				return nil, fmt.Errorf("create shapes: %w: %q", ErrAssetNotFound, s.AssetID)
			}
			if s.W <= 0 || s.H <= 0 {
				d.mu.Unlock()
				return nil, fmt.Errorf("create shapes: %w: image shape needs a size", ErrInvalidShapeSpec)
			}
		}
		created = append(created, Shape{
			ID:      "shape:" + uuid.NewString(),
			Type:    s.Type,
			X:       s.X,
			Y:       s.Y,
			W:       s.W,
			H:       s.H,
			AssetID: s.AssetID,
			Props:   copyProps(s.Props),
		})
	}
	d.shapes = append(d.shapes, created...)
	d.mu.Unlock()

	ids := make([]string, len(created))
	for i, s := range created {
		ids[i] = s.ID
	}
	d.notify(Change{Kind: ChangeShapesCreated, IDs: ids})

	out := make([]Shape, len(created))
	copy(out, created)
	return out, nil
}

// SetViewport moves the camera.
func (d *Document) SetViewport(cam Camera) {
	d.mu.Lock()
	d.camera = cam
	d.mu.Unlock()
	d.notify(Change{Kind: ChangeCamera})
}

// Viewport returns the current camera.
func (d *Document) Viewport() Camera {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.camera
}

// Subscribe registers fn for change notifications. Callbacks run synchronously
// after the mutation commits and must not call back into Subscribe.
func (d *Document) Subscribe(fn func(Change)) func() {
	d.subMu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.subMu.Unlock()

	return func() {
		d.subMu.Lock()
		delete(d.subs, id)
		d.subMu.Unlock()
	}
}

func (d *Document) notify(c Change) {
	d.subMu.Lock()
	fns := make([]func(Change), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

func copyProps(p map[string]string) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
