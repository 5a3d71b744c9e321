package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strconv"
	"time"

	"go-shoe-studio/internal/canvas"
	"go-shoe-studio/internal/config"
	apperrors "go-shoe-studio/internal/errors"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/observer"
	"go-shoe-studio/internal/service"
	"go-shoe-studio/internal/storage"
	"go-shoe-studio/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services are the handlers' dependencies.
type Services struct {
	Design    *service.DesignService
	Transform *service.TransformService
	Moodboard *service.MoodboardService
	Events    observer.Subject
	Metrics   *observer.MetricsObserver
}

type handler struct {
	svc Services
	cfg *config.Config
}

func NewHandler(svc Services, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	h := &handler{svc: svc, cfg: cfg}

	r.GET("/health", healthCheck)
	r.GET("/metrics", h.metrics)
	r.GET("/templates", h.listTemplates)

	sessions := r.Group("/sessions")
	sessions.POST("", h.createSession)
	withSession := sessions.Group("/:id", h.loadSession)
	withSession.GET("", h.sessionState)
	withSession.GET("/shapes", h.sessionShapes)
	withSession.POST("/uploads", h.sessionUpload)
	withSession.POST("/panels/:panel", h.togglePanel)
	withSession.DELETE("/panels", h.closePanels)
	withSession.POST("/templates/:item", h.loadTemplate)
	withSession.PUT("/color", h.setColor)
	withSession.DELETE("/color", h.clearColor)
	withSession.PUT("/reference", h.setReference)
	withSession.DELETE("/reference", h.clearReference)
	withSession.GET("/export", h.export)
	withSession.POST("/transform", h.transform)
	withSession.GET("/history", h.history)

	boards := r.Group("/moodboards")
	boards.POST("", h.createMoodboard)
	withBoard := boards.Group("/:id", h.loadMoodboard)
	withBoard.GET("", h.moodboard)
	withBoard.GET("/regions", h.moodboardRegions)
	withBoard.GET("/regions/:category/shapes", h.moodboardShapes)
	withBoard.POST("/uploads", h.moodboardUpload)

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) metrics(c *gin.Context) {
	if h.svc.Metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.svc.Metrics.GetMetrics())
}

func (h *handler) listTemplates(c *gin.Context) {
	items, err := h.svc.Design.Templates(c.Query("kind"))
	if err != nil {
		fail(c, "invalid template kind", err)
		return
	}
	c.JSON(http.StatusOK, models.TemplatesResponse{Items: items})
}

// requestContext bounds non-transform work by the configured request timeout.
func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
}

// readUpload reads the image from the multipart "file" field, or from a
// "data_url" form value holding a base64 data URI, plus the optional x, y, w
// and h form values.
func readUpload(c *gin.Context) (name string, data []byte, x, y, w, hgt float64, err error) {
	name, data, err = readUploadImage(c)
	if err != nil {
		return "", nil, 0, 0, 0, 0, err
	}
	if len(data) > storage.MaxAssetSize {
		return "", nil, 0, 0, 0, 0, apperrors.NewValidationError("upload is too large", storage.ErrTooLarge)
	}

	vals := make([]float64, 4)
	for i, key := range []string{"x", "y", "w", "h"} {
		raw := c.PostForm(key)
		if raw == "" {
			continue
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return "", nil, 0, 0, 0, 0, apperrors.NewValidationError(fmt.Sprintf("invalid %s", key), perr)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", nil, 0, 0, 0, 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a finite number", key), nil)
		}
		vals[i] = v
	}
	return name, data, vals[0], vals[1], vals[2], vals[3], nil
}

func readUploadImage(c *gin.Context) (string, []byte, error) {
	if uri := c.PostForm("data_url"); uri != "" {
		mimeType, data, err := canvas.ParseDataURI(uri)
		if err != nil {
			return "", nil, apperrors.NewValidationError("invalid data_url", err)
		}
		name := c.DefaultPostForm("name", "upload")
		if ext, ok := uploadExt[mimeType]; ok && path.Ext(name) == "" {
			name += ext
		}
		return name, data, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, apperrors.NewValidationError("multipart field \"file\" or \"data_url\" is required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, apperrors.NewValidationError("cannot read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxAssetSize+1))
	if err != nil {
		return "", nil, apperrors.NewValidationError("cannot read upload", err)
	}
	return fh.Filename, data, nil
}

var uploadExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status carried by err.
func fail(c *gin.Context, message string, err error) {
	respondError(c, determineStatusCode(err), message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	body := models.ErrorResponse{Error: http.StatusText(code)}
	if appErr, ok := apperrors.As(err); ok {
		body.Message = appErr.Message
		if appErr.Details != "" {
			body.Message += ": " + appErr.Details
		}
	} else {
		body.Message = fmt.Sprintf("%s: %v", message, err)
	}
	c.AbortWithStatusJSON(code, body)
}
