package transport

import (
	"net/http"

	"go-shoe-studio/internal/service"
	"go-shoe-studio/pkg/models"

	"github.com/gin-gonic/gin"
)

const moodboardKey = "moodboard"

func (h *handler) loadMoodboard(c *gin.Context) {
	m, err := h.svc.Moodboard.Get(c.Param("id"))
	if err != nil {
		fail(c, "unknown moodboard", err)
		return
	}
	c.Set(moodboardKey, m)
	c.Next()
}

func moodboard(c *gin.Context) *service.Moodboard {
	return c.MustGet(moodboardKey).(*service.Moodboard)
}

func (h *handler) describeMoodboard(m *service.Moodboard) models.MoodboardResponse {
	return models.MoodboardResponse{
		ID:      m.ID,
		Regions: h.svc.Moodboard.Regions(),
		Shapes:  len(m.Document.ListShapes()),
	}
}

func (h *handler) createMoodboard(c *gin.Context) {
	m, err := h.svc.Moodboard.Create()
	if err != nil {
		fail(c, "failed to create moodboard", err)
		return
	}
	c.JSON(http.StatusCreated, h.describeMoodboard(m))
}

func (h *handler) moodboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.describeMoodboard(moodboard(c)))
}

func (h *handler) moodboardRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regions": h.svc.Moodboard.Regions()})
}

func (h *handler) moodboardShapes(c *gin.Context) {
	shapes, err := h.svc.Moodboard.ShapesInCategory(moodboard(c), c.Param("category"), c.Query("policy"))
	if err != nil {
		fail(c, "invalid category query", err)
		return
	}
	c.JSON(http.StatusOK, models.ShapesResponse{Shapes: shapes})
}

func (h *handler) moodboardUpload(c *gin.Context) {
	name, data, x, y, w, hgt, err := readUpload(c)
	if err != nil {
		fail(c, "invalid upload", err)
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Moodboard.Upload(ctx, moodboard(c), name, data, x, y, w, hgt)
	if err != nil {
		fail(c, "upload failed", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
