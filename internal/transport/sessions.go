package transport

import (
	"errors"
	"net/http"

	apperrors "go-shoe-studio/internal/errors"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/observer"
	"go-shoe-studio/internal/service"
	"go-shoe-studio/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const sessionKey = "session"

func (h *handler) loadSession(c *gin.Context) {
	sess, err := h.svc.Design.Session(c.Param("id"))
	if err != nil {
		fail(c, "unknown session", err)
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func session(c *gin.Context) *service.Session {
	return c.MustGet(sessionKey).(*service.Session)
}

func (h *handler) createSession(c *gin.Context) {
	sess := h.svc.Design.CreateSession()
	c.JSON(http.StatusCreated, h.svc.Design.State(sess))
}

func (h *handler) sessionState(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Design.State(session(c)))
}

func (h *handler) sessionShapes(c *gin.Context) {
	c.JSON(http.StatusOK, models.ShapesResponse{Shapes: session(c).Document.ListShapes()})
}

func (h *handler) sessionUpload(c *gin.Context) {
	name, data, x, y, w, hgt, err := readUpload(c)
	if err != nil {
		fail(c, "invalid upload", err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Design.Upload(ctx, session(c), name, data, x, y, w, hgt)
	if err != nil {
		fail(c, "upload failed", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *handler) togglePanel(c *gin.Context) {
	sess := session(c)
	open, err := h.svc.Design.TogglePanel(sess, c.Param("panel"))
	if err != nil {
		fail(c, "invalid panel", err)
		return
	}
	c.JSON(http.StatusOK, models.PanelResponse{OpenPanel: open.String(), Panels: sess.Modal.Snapshot()})
}

func (h *handler) closePanels(c *gin.Context) {
	sess := session(c)
	sess.Modal.Close()
	c.JSON(http.StatusOK, models.PanelResponse{OpenPanel: sess.Modal.Open().String(), Panels: sess.Modal.Snapshot()})
}

func (h *handler) loadTemplate(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	placed, err := h.svc.Design.LoadTemplate(ctx, session(c), c.Param("item"))
	if err != nil {
		fail(c, "failed to load template", err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func (h *handler) setColor(c *gin.Context) {
	var req models.ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, "invalid request format", apperrors.NewValidationError("invalid request format", err))
		return
	}
	c.JSON(http.StatusOK, h.svc.Design.SetColor(session(c), req.Color))
}

func (h *handler) clearColor(c *gin.Context) {
	h.svc.Design.ClearColor(session(c))
	c.Status(http.StatusNoContent)
}

func (h *handler) setReference(c *gin.Context) {
	var req models.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, "invalid request format", apperrors.NewValidationError("invalid request format", err))
		return
	}
	item, err := h.svc.Design.SetReference(session(c), req.Item)
	if err != nil {
		fail(c, "invalid reference", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) clearReference(c *gin.Context) {
	h.svc.Design.ClearReference(session(c))
	c.Status(http.StatusNoContent)
}

func (h *handler) export(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	img, err := h.svc.Design.Export(ctx, session(c))
	if err != nil {
		fail(c, "export failed", err)
		return
	}
	c.Data(http.StatusOK, img.MimeType, img.Data)
}

// transform asks the pipeline's responder to run and waits for its result.
func (h *handler) transform(c *gin.Context) {
	sess := session(c)
	out, err := h.svc.Events.Request(c.Request.Context(), observer.TransformEvent{
		EventType: observer.TransformRequested,
		SessionID: sess.ID,
		Metadata:  map[string]interface{}{"ip": c.ClientIP()},
	})
	if err != nil {
		if errors.Is(err, observer.ErrNoResponder) {
			err = apperrors.NewInternalError("transform pipeline unavailable", err)
		}
		fail(c, "transform failed", err)
		return
	}
	res, ok := out.(*service.TransformResult)
	if !ok {
		fail(c, "transform failed", apperrors.NewInternalError("unexpected transform result", nil))
		return
	}

	logger.WithSession(sess.ID).WithFields(logrus.Fields{
		"shape_id":    res.Shape.ID,
		"duration_ms": res.Duration.Milliseconds(),
	}).Info("Transform request completed")

	c.JSON(http.StatusCreated, models.TransformResponse{
		RecordID:    res.RecordID,
		Shape:       res.Shape,
		Asset:       res.Asset,
		Camera:      res.Camera,
		Instruction: res.Instruction,
		ImageCount:  res.ImageCount,
		Text:        res.Text,
		DurationMS:  res.Duration.Milliseconds(),
	})
}

func (h *handler) history(c *gin.Context) {
	sess := session(c)
	recs, err := h.svc.Transform.History(c.Request.Context(), sess.ID)
	if err != nil {
		fail(c, "failed to load history", err)
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{SessionID: sess.ID, Records: recs})
}
