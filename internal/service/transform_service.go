package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-shoe-studio/internal/canvas"
	"go-shoe-studio/internal/catalog"
	apperrors "go-shoe-studio/internal/errors"
	"go-shoe-studio/internal/genai"
	"go-shoe-studio/internal/geometry"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/observer"
	"go-shoe-studio/internal/prompt"
	"go-shoe-studio/internal/repository"
	"go-shoe-studio/internal/selection"
	"go-shoe-studio/internal/storage"
	"go-shoe-studio/internal/swatch"
)

// ResultOffset is the gap between the sketch area and a placed result.
const ResultOffset = 100.0

// TransformConfig holds the pipeline settings.
type TransformConfig struct {
	SketchArea geometry.Rect
	SwatchSize int
	Timeout    time.Duration
}

// TransformResult describes the shape created for a generated image.
type TransformResult struct {
	RecordID    string
	Shape       canvas.Shape
	Asset       canvas.Asset
	Camera      canvas.Camera
	Instruction string
	ImageCount  int
	Text        string
	Duration    time.Duration
}

// TransformService runs the sketch-to-render pipeline for design sessions. It
// answers TransformRequested events as the publisher's responder.
type TransformService struct {
	store      *Store
	generator  genai.Generator
	fetcher    storage.AssetFetcher
	recognizer *catalog.Recognizer
	history    repository.TransformRepository
	events     observer.Subject
	cfg        TransformConfig
	now        func() time.Time
}

func NewTransformService(
	store *Store,
	generator genai.Generator,
	fetcher storage.AssetFetcher,
	cat *catalog.Catalog,
	history repository.TransformRepository,
	events observer.Subject,
	cfg TransformConfig,
) *TransformService {
	if cfg.SwatchSize <= 0 {
		cfg.SwatchSize = swatch.DefaultSize
	}
	if cfg.SketchArea.Empty() {
		cfg.SketchArea = geometry.DefaultSketchArea
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &TransformService{
		store:      store,
		generator:  generator,
		fetcher:    fetcher,
		recognizer: catalog.NewRecognizer(cat.Rules()),
		history:    history,
		events:     events,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Respond handles a TransformRequested event for event.SessionID.
func (s *TransformService) Respond(ctx context.Context, event observer.TransformEvent) (interface{}, error) {
	if event.EventType != observer.TransformRequested {
		return nil, apperrors.NewInternalError("unexpected event "+string(event.EventType), nil)
	}
	sess, err := s.store.Session(event.SessionID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("session not found", err)
	}
	res, err := s.Transform(ctx, sess)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Transform runs the pipeline once. Stages execute strictly in order and any
// failure leaves the canvas without new shapes. A second call while one is in
// flight for the same session is rejected.
func (s *TransformService) Transform(ctx context.Context, sess *Session) (*TransformResult, error) {
	token, ok := sess.TryBegin()
	if !ok {
		const msg = "a transform is already in progress"
		s.saveRecord(ctx, &repository.TransformRecord{
			ID:           uuid.NewString(),
			SessionID:    sess.ID,
			Status:       repository.StatusRejected,
			StartedAt:    s.now().UTC(),
			ErrorMessage: msg,
		}, logger.WithSession(sess.ID))
		s.publish(ctx, observer.TransformEvent{EventType: observer.TransformRejected, SessionID: sess.ID})
		return nil, apperrors.NewConflictError(msg, nil)
	}
	defer sess.End(token)

	started := s.now()
	rec := &repository.TransformRecord{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		StartedAt: started.UTC(),
		Color:     sess.Color(),
	}
	if ref, ok := sess.Reference(); ok {
		rec.Reference = ref.ID
	}
	log := logger.WithSession(sess.ID).WithField("request_id", token)

	s.publish(ctx, observer.TransformEvent{EventType: observer.TransformStarted, SessionID: sess.ID, RequestID: token})

	result, err := s.run(ctx, sess, rec)
	duration := s.now().Sub(started)
	rec.DurationMS = duration.Milliseconds()

	if err != nil {
		rec.Status = repository.StatusFailed
		rec.ErrorMessage = err.Error()
		s.saveRecord(ctx, rec, log)
		log.WithError(err).Warn("Transform aborted")
		s.publish(ctx, observer.TransformEvent{
			EventType:    observer.TransformFailed,
			SessionID:    sess.ID,
			RequestID:    token,
			Duration:     duration,
			ErrorMessage: err.Error(),
		})
		return nil, err
	}

	rec.Status = repository.StatusSucceeded
	rec.ResultShape = result.Shape.ID
	s.saveRecord(ctx, rec, log)

	result.RecordID = rec.ID
	result.Duration = duration
	log.WithFields(logrus.Fields{
		"shape_id":    result.Shape.ID,
		"image_count": result.ImageCount,
		"duration_ms": rec.DurationMS,
	}).Info("Transform placed result")
	s.publish(ctx, observer.TransformEvent{
		EventType: observer.TransformCompleted,
		SessionID: sess.ID,
		RequestID: token,
		Duration:  duration,
		Success:   true,
		Metadata:  map[string]interface{}{"shape_id": result.Shape.ID},
	})
	return result, nil
}

func (s *TransformService) run(ctx context.Context, sess *Session, rec *repository.TransformRecord) (*TransformResult, error) {
	engine := sess.Document

	// 1. Filter and preconditions
	selected := selection.Filter(engine.ListShapes(), s.cfg.SketchArea, selection.Overlap)
	if len(selected) == 0 {
		return nil, apperrors.NewPreconditionError("no image in sketch area", nil)
	}
	if !s.recognizer.ContainsBaseTemplate(selected, engine.Asset) {
		return nil, apperrors.NewPreconditionError("no base template in sketch area: load a base sketch first", nil)
	}
	if cc, ok := s.generator.(genai.CredentialChecker); ok {
		if err := cc.CheckCredential(); err != nil {
			return nil, apperrors.NewConfigurationError(
				"GEMINI_API_KEY is missing or still a placeholder: set a real key and restart the server", err)
		}
	}

	// 2. Export
	exported, err := engine.ExportShapesToImage(ctx, selected)
	if err != nil {
		return nil, apperrors.NewProcessingError("export failed", err)
	}

	// 3. Optional inputs
	in := prompt.Inputs{Base: genai.InlineImage{Data: exported.Data, MimeType: exported.MimeType}}
	if item, ok := sess.Reference(); ok {
		blob, err := s.fetchReference(ctx, sess.ID, item)
		if err != nil {
			return nil, err
		}
		in.Reference = &prompt.Reference{
			Kind:  item.Kind,
			Image: genai.InlineImage{Data: blob.Data, MimeType: blob.MimeType},
		}
	}
	if hex := sess.Color(); hex != "" {
		data, err := swatch.Render(hex, s.cfg.SwatchSize)
		if err != nil {
			return nil, apperrors.NewProcessingError("swatch rendering failed", err)
		}
		in.Color = hex
		in.Swatch = &genai.InlineImage{Data: data, MimeType: "image/png"}
	}

	// 4. Assemble and dispatch once
	req := prompt.Assemble(in)
	rec.Instruction = req.Instruction
	rec.ImageCount = len(req.Images)

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	resp, err := s.generator.Generate(genCtx, req)
	if err != nil {
		return nil, mapGenerateError(err)
	}
	img, ok := resp.FirstImage()
	if !ok {
		return nil, apperrors.NewUpstreamError("transform failed: the model returned no image", genai.ErrNoImage)
	}

	// 5. Reintroduce
	asset := canvas.NewResultAsset(img.MimeType, img.Data)
	if err := engine.CreateAssets(ctx, []canvas.Asset{asset}); err != nil {
		return nil, apperrors.NewInternalError("failed to store result", err)
	}
	area := s.cfg.SketchArea
	shapes, err := engine.CreateShapes([]canvas.ShapeSpec{
		canvas.ImageSpec(asset, area.X+area.Width+ResultOffset, area.Y, canvas.ResultWidth, canvas.ResultHeight),
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to place result", err)
	}
	engine.SetViewport(canvas.DefaultCamera)

	return &TransformResult{
		Shape:       shapes[0],
		Asset:       asset,
		Camera:      canvas.DefaultCamera,
		Instruction: req.Instruction,
		ImageCount:  len(req.Images),
		Text:        resp.Text(),
	}, nil
}

func (s *TransformService) fetchReference(ctx context.Context, sessionID string, item catalog.Item) (*storage.Blob, error) {
	blob, err := s.fetcher.Fetch(ctx, item.Path)
	if err != nil {
		s.publish(ctx, observer.TransformEvent{
			EventType:    observer.AssetFetchFailed,
			SessionID:    sessionID,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"path": item.Path},
		})
		return nil, mapFetchError("reference image fetch failed", err)
	}
	s.publish(ctx, observer.TransformEvent{
		EventType: observer.AssetFetched,
		SessionID: sessionID,
		Success:   true,
		Metadata:  map[string]interface{}{"path": item.Path, "mime_type": blob.MimeType},
	})
	return blob, nil
}

func (s *TransformService) saveRecord(ctx context.Context, rec *repository.TransformRecord, log *logrus.Entry) {
	if s.history == nil {
		return
	}
	// History must not be lost because the request context ended.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.history.Save(saveCtx, rec); err != nil {
		log.WithError(err).Warn("Failed to record transform history")
	}
}

func (s *TransformService) publish(ctx context.Context, ev observer.TransformEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, ev)
	}
}

// History returns a session's transform records.
func (s *TransformService) History(ctx context.Context, sessionID string) ([]*repository.TransformRecord, error) {
	if s.history == nil {
		return []*repository.TransformRecord{}, nil
	}
	recs, err := s.history.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load history", err)
	}
	return recs, nil
}

func mapGenerateError(err error) *apperrors.AppError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("transform failed: the model did not answer in time", err)
	case errors.Is(err, genai.ErrMissingCredential):
		return apperrors.NewConfigurationError(
			"GEMINI_API_KEY is missing or still a placeholder: set a real key and restart the server", err)
	case errors.Is(err, genai.ErrRateLimited):
		return apperrors.NewUpstreamError("transform failed: the model is rate limited, try again later", err)
	case errors.Is(err, genai.ErrResponseInvalid), errors.Is(err, genai.ErrInvalidInput):
		return apperrors.NewUpstreamError("transform failed", err)
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return apperrors.NewTimeoutError("transform failed: the model did not answer in time", err)
		}
		return apperrors.NewNetworkError("transform failed", err)
	default:
		return apperrors.NewUpstreamError("transform failed", err)
	}
}

func mapFetchError(message string, err error) *apperrors.AppError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError(message, err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NewNetworkError(fmt.Sprintf("%s: asset missing", message), err)
	case errors.Is(err, storage.ErrNotAnImage), errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrInvalidPath):
		return apperrors.NewProcessingError(message, err)
	default:
		return apperrors.NewNetworkError(message, err)
	}
}
