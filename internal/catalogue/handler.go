package catalogue

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinehub/internal/events"
	"cinehub/internal/omdb"
	"cinehub/pkg/models"
)

// Provider is the outbound lookup collaborator. The handler only needs one
// call: query in, decoded record out.
type Provider interface {
	Lookup(ctx context.Context, q models.LookupQuery) (*models.Audiovisual, error)
}

// RatingSource supplies externally computed aggregate ratings for view
// projection.
type RatingSource interface {
	AverageForAudiovisual(ctx context.Context, audiovisualID string) (*models.Rating, error)
	AveragesFor(ctx context.Context, audiovisualIDs []string) (map[string]models.Rating, error)
}

type Handler struct {
	Repo     *Repo
	Provider Provider
	Ratings  RatingSource
	Hub      *events.Hub
}

func NewHandler(repo *Repo, provider Provider, ratings RatingSource, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Provider: provider, Ratings: ratings, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                       // GET /audiovisuals
	rg.GET("/:id", h.getByID)                // GET /audiovisuals/:id
	rg.GET("/:id/provider", h.providerForm)  // GET /audiovisuals/:id/provider
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.add)          // POST /audiovisuals
	rg.DELETE("/:id", h.remove) // DELETE /audiovisuals/:id
}

func (h *Handler) add(c *gin.Context) {
	var q models.LookupQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "invalid lookup query: " + err.Error()})
		return
	}

	if q.ImdbID == nil && q.Title == nil {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "imdb_id or title is required"})
		return
	}

	av, err := h.Provider.Lookup(c.Request.Context(), q)
	if err != nil {
		var lookupErr *omdb.LookupError
		if errors.As(err, &lookupErr) {
			c.JSON(http.StatusNotFound, models.ErrorMessage{Message: lookupErr.Message})
			return
		}
		var mismatch *models.ShapeMismatchError
		if errors.As(err, &mismatch) {
			c.JSON(http.StatusBadGateway, models.ErrorMessage{Message: mismatch.Error()})
			return
		}
		log.Printf("[catalogue] provider lookup failed: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorMessage{Message: "provider lookup failed"})
		return
	}

	rec := models.AudiovisualRecord{
		ID:          uuid.NewString(),
		Audiovisual: *av,
	}

	// Re-adding a known title keeps its public id stable.
	if av.ImdbID != nil {
		existing, err := h.Repo.GetByImdbID(c.Request.Context(), *av.ImdbID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "lookup of existing entry failed"})
			return
		}
		if existing != nil {
			rec.ID = existing.ID
		}
	}

	if err := h.Repo.Save(c.Request.Context(), rec); err != nil {
		log.Printf("[catalogue] save failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "save failed"})
		return
	}

	view, err := h.viewOf(c.Request.Context(), &rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "projection failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.CatalogueEvent{
			Type:          events.TypeAudiovisualAdded,
			AudiovisualID: rec.ID,
			Title:         strOr(rec.Title),
			At:            time.Now().UTC(),
		})
	}

	c.JSON(http.StatusCreated, view)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Type:   c.Query("type"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "count failed"})
		return
	}

	recs, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "list failed"})
		return
	}

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	ratings, err := h.Ratings.AveragesFor(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "ratings failed"})
		return
	}

	items := make([]models.AudiovisualView, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		var in models.RatingInput
		if agg, ok := ratings[rec.ID]; ok {
			in = models.RatingFromAggregate(&agg)
		} else {
			in = models.NoRating()
		}
		view, err := buildView(rec, in)
		if err != nil {
			log.Printf("[catalogue] skipping %s in listing: %v", rec.ID, err)
			continue
		}
		items = append(items, *view)
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}

	view, err := h.viewOf(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "projection failed"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// providerForm returns the stored record re-encoded in the normalized
// snake_case provider form, whatever key casing the provider used on input.
func (h *Handler) providerForm(c *gin.Context) {
	rec, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec.Audiovisual)
}

func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorMessage{Message: "not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.CatalogueEvent{
			Type:          events.TypeAudiovisualRemoved,
			AudiovisualID: id,
			At:            time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, models.RemovedMessage{Message: "Movie or series removed"})
}

func (h *Handler) fetch(c *gin.Context) (*models.AudiovisualRecord, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, models.ErrorMessage{Message: "id required"})
		return nil, false
	}

	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorMessage{Message: "get failed"})
		return nil, false
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, models.ErrorMessage{Message: "not found"})
		return nil, false
	}
	return rec, true
}

func (h *Handler) viewOf(ctx context.Context, rec *models.AudiovisualRecord) (*models.AudiovisualView, error) {
	agg, err := h.Ratings.AverageForAudiovisual(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return buildView(rec, models.RatingFromAggregate(agg))
}

func buildView(rec *models.AudiovisualRecord, rating models.RatingInput) (*models.AudiovisualView, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, err
	}
	return models.NewAudiovisualView(id, &rec.Audiovisual, rating)
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
