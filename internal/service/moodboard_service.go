package service

import (
	"context"
	"fmt"

	"go-shoe-studio/internal/canvas"
	apperrors "go-shoe-studio/internal/errors"
	"go-shoe-studio/internal/geometry"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/selection"
	"go-shoe-studio/pkg/models"
	"go-shoe-studio/pkg/validation"
)

// MoodboardService manages moodboard canvases with six fixed category cells.
type MoodboardService struct {
	store     *Store
	validator *validation.ImageValidator
}

func NewMoodboardService(store *Store, validator *validation.ImageValidator) *MoodboardService {
	if validator == nil {
		validator = validation.NewImageValidator()
	}
	return &MoodboardService{store: store, validator: validator}
}

// Create starts a moodboard and lays out its category cells.
func (s *MoodboardService) Create() (*Moodboard, error) {
	m := s.store.CreateMoodboard()
	if _, err := canvas.SeedMoodboard(m.Document); err != nil {
		return nil, apperrors.NewInternalError("failed to lay out moodboard", err)
	}
	logger.WithSession(m.ID).Info("Moodboard created")
	return m, nil
}

func (s *MoodboardService) Get(id string) (*Moodboard, error) {
	m, err := s.store.Moodboard(id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("moodboard not found", err)
	}
	return m, nil
}

// Regions returns the category cells.
func (s *MoodboardService) Regions() []geometry.Region {
	return geometry.MoodboardRegions()
}

// ShapesInCategory returns the image shapes inside one category cell.
func (s *MoodboardService) ShapesInCategory(m *Moodboard, category, policy string) ([]canvas.Shape, error) {
	region, ok := geometry.RegionFor(geometry.Category(category))
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown category %q", category), nil)
	}
	p, err := selection.ParsePolicy(policy)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid policy", err)
	}
	return selection.Filter(m.Document.ListShapes(), region.Bounds, p), nil
}

// Upload places an inspiration image on the moodboard.
func (s *MoodboardService) Upload(ctx context.Context, m *Moodboard, name string, data []byte, x, y, w, h float64) (*models.UploadResponse, error) {
	return uploadImage(ctx, m.Document, s.validator, name, data, x, y, w, h)
}
