package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"go-shoe-studio/internal/canvas"
	"go-shoe-studio/internal/catalog"
	apperrors "go-shoe-studio/internal/errors"
	"go-shoe-studio/internal/geometry"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/modal"
	"go-shoe-studio/internal/observer"
	"go-shoe-studio/internal/selection"
	"go-shoe-studio/internal/storage"
	"go-shoe-studio/internal/swatch"
	"go-shoe-studio/pkg/models"
	"go-shoe-studio/pkg/validation"
)

// panelForKind is the panel that offers items of a catalog kind.
var panelForKind = map[catalog.Kind]modal.Panel{
	catalog.KindBase:      modal.Base,
	catalog.KindStrap:     modal.Strap,
	catalog.KindAccessory: modal.Accessory,
	catalog.KindPattern:   modal.Pattern,
	catalog.KindLeather:   modal.Leather,
}

// DesignService handles the design tab: panels, selections, template parts,
// uploads and plain exports.
type DesignService struct {
	store      *Store
	catalog    *catalog.Catalog
	fetcher    storage.AssetFetcher
	validator  *validation.ImageValidator
	events     observer.Subject
	sketchArea geometry.Rect
}

func NewDesignService(
	store *Store,
	cat *catalog.Catalog,
	fetcher storage.AssetFetcher,
	validator *validation.ImageValidator,
	events observer.Subject,
	sketchArea geometry.Rect,
) *DesignService {
	if sketchArea.Empty() {
		sketchArea = geometry.DefaultSketchArea
	}
	if validator == nil {
		validator = validation.NewImageValidator()
	}
	return &DesignService{
		store:      store,
		catalog:    cat,
		fetcher:    fetcher,
		validator:  validator,
		events:     events,
		sketchArea: sketchArea,
	}
}

func (s *DesignService) CreateSession() *Session {
	sess := s.store.CreateSession()
	logger.WithSession(sess.ID).Info("Design session created")
	return sess
}

func (s *DesignService) Session(id string) (*Session, error) {
	sess, err := s.store.Session(id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("session not found", err)
	}
	return sess, nil
}

// State reports the session as the design tab renders it.
func (s *DesignService) State(sess *Session) models.SessionState {
	shapes := sess.Document.ListShapes()
	st := models.SessionState{
		ID:           sess.ID,
		OpenPanel:    sess.Modal.Open().String(),
		Panels:       sess.Modal.Snapshot(),
		Color:        sess.Color(),
		Loading:      sess.Loading(),
		CanTransform: selection.CanTransform(shapes, s.sketchArea),
		Camera:       sess.Document.Viewport(),
		SketchArea:   s.sketchArea,
		ShapeCount:   len(shapes),
	}
	if ref, ok := sess.Reference(); ok {
		st.Reference = &ref
	}
	return st
}

// TogglePanel opens the named panel, closing the others, or closes it if open.
func (s *DesignService) TogglePanel(sess *Session, name string) (modal.Panel, error) {
	p, err := modal.ParsePanel(name)
	if err != nil {
		return modal.None, apperrors.NewValidationError("unknown panel", err)
	}
	return sess.Modal.Toggle(p), nil
}

// Templates lists catalog items, optionally of one kind.
func (s *DesignService) Templates(kind string) ([]catalog.Item, error) {
	k := catalog.Kind(strings.ToLower(strings.TrimSpace(kind)))
	if _, ok := panelForKind[k]; k != "" && !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown template kind %q", kind), nil)
	}
	return s.catalog.Items(k), nil
}

// LoadTemplate places a base, strap or accessory image on the canvas and
// closes the panel it was chosen from.
func (s *DesignService) LoadTemplate(ctx context.Context, sess *Session, itemID string) (*models.PlacedImage, error) {
	item, ok := s.catalog.Item(itemID)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("unknown template %q", itemID), nil)
	}
	if item.Kind.IsReference() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("%q is a %s reference; select it as a reference instead", item.ID, item.Kind), nil)
	}

	blob, err := s.fetcher.Fetch(ctx, item.Path)
	if err != nil {
		s.publish(ctx, observer.TransformEvent{
			EventType:    observer.AssetFetchFailed,
			SessionID:    sess.ID,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"path": item.Path},
		})
		return nil, mapFetchError("template image fetch failed", err)
	}
	s.publish(ctx, observer.TransformEvent{
		EventType: observer.AssetFetched,
		SessionID: sess.ID,
		Success:   true,
		Metadata:  map[string]interface{}{"path": item.Path, "mime_type": blob.MimeType},
	})

	asset := canvas.NewTemplateAsset(item.Path, item.Path, blob.MimeType, blob.Data)
	placed, err := placeImage(ctx, sess.Document, asset,
		canvas.TemplateX, canvas.TemplateY, canvas.TemplateWidth, canvas.TemplateHeight)
	if err != nil {
		return nil, err
	}
	sess.Document.SetViewport(canvas.DefaultCamera)
	placed.Camera = canvas.DefaultCamera
	sess.Modal.CloseIf(panelForKind[item.Kind])

	logger.WithSession(sess.ID).WithFields(logrus.Fields{
		"item":     item.ID,
		"shape_id": placed.Shape.ID,
	}).Info("Template loaded")
	return placed, nil
}

// SetColor validates and stores a color selection. Invalid input clears the
// selection, meaning no color is selected, and is reported as a warning.
func (s *DesignService) SetColor(sess *Session, input string) models.ColorResponse {
	defer sess.Modal.CloseIf(modal.Color)
	hex, ok := swatch.Normalize(input)
	if !ok {
		sess.setColor("")
		return models.ColorResponse{Warning: fmt.Sprintf("invalid color %q: no color selected", input)}
	}
	sess.setColor(hex)
	return models.ColorResponse{Color: hex}
}

func (s *DesignService) ClearColor(sess *Session) {
	sess.setColor("")
}

// SetReference selects a pattern or leather item as the material reference.
func (s *DesignService) SetReference(sess *Session, itemID string) (catalog.Item, error) {
	item, ok := s.catalog.Item(itemID)
	if !ok {
		return catalog.Item{}, apperrors.NewNotFoundError(fmt.Sprintf("unknown reference %q", itemID), nil)
	}
	if !item.Kind.IsReference() {
		return catalog.Item{}, apperrors.NewValidationError(
			fmt.Sprintf("%q is a %s template, not a pattern or leather", item.ID, item.Kind), nil)
	}
	sess.setReference(&item)
	sess.Modal.CloseIf(panelForKind[item.Kind])
	return item, nil
}

func (s *DesignService) ClearReference(sess *Session) {
	sess.setReference(nil)
}

// Upload places a user image on the design canvas.
func (s *DesignService) Upload(ctx context.Context, sess *Session, name string, data []byte, x, y, w, h float64) (*models.UploadResponse, error) {
	return uploadImage(ctx, sess.Document, s.validator, name, data, x, y, w, h)
}

// Export flattens the image shapes overlapping the sketch area without calling
// the model.
func (s *DesignService) Export(ctx context.Context, sess *Session) (*canvas.ExportedImage, error) {
	selected := selection.Filter(sess.Document.ListShapes(), s.sketchArea, selection.Overlap)
	if len(selected) == 0 {
		return nil, apperrors.NewPreconditionError("no image in sketch area", nil)
	}
	img, err := sess.Document.ExportShapesToImage(ctx, selected)
	if err != nil {
		return nil, apperrors.NewProcessingError("export failed", err)
	}
	return img, nil
}

func (s *DesignService) publish(ctx context.Context, ev observer.TransformEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, ev)
	}
}

// uploadImage validates data and places it as an image shape. A zero size
// uses the image's own dimensions.
func uploadImage(ctx context.Context, engine canvas.Engine, v *validation.ImageValidator, name string, data []byte, x, y, w, h float64) (*models.UploadResponse, error) {
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("empty upload", nil)
	}
	mime := catalog.DetectMimeType(name, data)
	if mime == "" {
		return nil, apperrors.NewValidationError("upload is not a supported image", nil)
	}
	issues := v.Validate(data)
	if v.HasCriticalIssues(issues) {
		return nil, apperrors.NewValidationError("image rejected", nil).
			WithDetails(strings.Join(v.ConvertIssuesToMessages(issues), " "))
	}
	if !geometry.NewRect(x, y, w, h).Finite() {
		return nil, apperrors.NewValidationError("position and size must be finite numbers", nil)
	}
	if w < 0 || h < 0 {
		return nil, apperrors.NewValidationError("width and height must not be negative", nil)
	}

	asset := canvas.NewUploadAsset(name, mime, data)
	if w == 0 || h == 0 {
		w, h = float64(asset.Width), float64(asset.Height)
	}
	placed, err := placeImage(ctx, engine, asset, x, y, w, h)
	if err != nil {
		return nil, err
	}
	placed.Camera = engine.Viewport()
	return &models.UploadResponse{PlacedImage: *placed, Warnings: v.ConvertIssuesToMessages(issues)}, nil
}

func placeImage(ctx context.Context, engine canvas.Engine, asset canvas.Asset, x, y, w, h float64) (*models.PlacedImage, error) {
	if err := engine.CreateAssets(ctx, []canvas.Asset{asset}); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("request ended before the image was stored", err)
		}
		return nil, apperrors.NewInternalError("failed to store image", err)
	}
	shapes, err := engine.CreateShapes([]canvas.ShapeSpec{canvas.ImageSpec(asset, x, y, w, h)})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to place image", err)
	}
	return &models.PlacedImage{Shape: shapes[0], Asset: asset}, nil
}
