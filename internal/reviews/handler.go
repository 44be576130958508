package reviews

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cinehub/internal/auth"
	"cinehub/internal/events"
	"cinehub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/audiovisuals/:id/reviews", h.listByAudiovisual)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.create)
	rg.DELETE("/reviews/:id", h.delete)
}

type createReq struct {
	AudiovisualID string `json:"audiovisual_id"`
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorMessage{Message: "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "invalid json"})
		return
	}

	audiovisualID := strings.TrimSpace(req.AudiovisualID)
	if audiovisualID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "audiovisual_id required"})
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "rating must be between 1 and 5"})
		return
	}

	review, err := h.Repo.Create(c.Request.Context(), claims.UserID, audiovisualID, req.Rating, strings.TrimSpace(req.Text))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "create failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.CatalogueEvent{
			Type:          events.TypeReviewAdded,
			AudiovisualID: audiovisualID,
			At:            time.Now().UTC(),
		})
	}

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) listByAudiovisual(c *gin.Context) {
	audiovisualID := strings.TrimSpace(c.Param("id"))
	if audiovisualID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "audiovisual id required"})
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByAudiovisual(c.Request.Context(), audiovisualID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorMessage{Message: "unauthorized"})
		return
	}

	idRaw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "invalid id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorMessage{Message: "not found"})
		return
	}

	c.JSON(http.StatusOK, models.RemovedMessage{Message: "Review removed"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
