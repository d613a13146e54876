package shelf

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"animeshelf/internal/events"
	"animeshelf/pkg/models"
)

// Catalog is the slice of the catalog client the shelf needs: metadata
// lookup when an anime is first added.
type Catalog interface {
	GetByID(ctx context.Context, id int) *models.CatalogAnime
}

type Handler struct {
	Repo    *Repo
	Catalog Catalog
	Hub     *events.Hub
}

func NewHandler(repo *Repo, catalog Catalog, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Catalog: catalog, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shelf", h.list)
	rg.POST("/shelf", h.add)
	rg.GET("/shelf/stats", h.stats)
	rg.GET("/shelf/:id", h.getOne)
	rg.PATCH("/shelf/:id", h.update)
	rg.DELETE("/shelf/:id", h.remove)
	rg.GET("/shelf/:id/history", h.history)
}

type addReq struct {
	MalID          int    `json:"mal_id"`
	Title          string `json:"title"` // fallback when the catalog is unreachable
	Status         string `json:"status"`
	CurrentEpisode int    `json:"current_episode"`
	Rating         int    `json:"rating"`
}

func (h *Handler) add(c *gin.Context) {
	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.MalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mal_id must be a positive integer"})
		return
	}

	status := models.StatusPlanToWatch
	if strings.TrimSpace(req.Status) != "" {
		status = models.NormalizeStatus(req.Status)
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status must be one of: watching, completed, on_hold, dropped, plan_to_watch",
			})
			return
		}
	}
	if req.CurrentEpisode < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_episode must be >= 0"})
		return
	}
	if req.Rating != 0 && (req.Rating < 1 || req.Rating > 10) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 10"})
		return
	}

	entry := models.ShelfEntry{
		MalID:          req.MalID,
		Title:          strings.TrimSpace(req.Title),
		Status:         status,
		CurrentEpisode: req.CurrentEpisode,
		Rating:         req.Rating,
	}

	if cat := h.Catalog.GetByID(c.Request.Context(), req.MalID); cat != nil {
		entry.Title = cat.Title
		entry.CoverImage = cat.CoverImage
		entry.TotalEpisodes = cat.Episodes
		entry.Genres = cat.Genres
		entry.Studios = cat.Studios
		entry.StreamingPlatforms = cat.StreamingPlatforms
		entry.Type = cat.Type
		entry.Year = cat.Year
		entry.Season = cat.Season
		entry.BroadcastDay = cat.BroadcastDay
		entry.DurationMinutes = cat.DurationMinutes
	}
	if entry.Title == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable and no title supplied"})
		return
	}

	if status == models.StatusCompleted && entry.TotalEpisodes > 0 {
		entry.CurrentEpisode = entry.TotalEpisodes
	} else {
		entry.CurrentEpisode = clampEpisode(entry.CurrentEpisode, entry.TotalEpisodes)
	}

	if err := h.Repo.Upsert(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), entry.MalID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcastUpdate(saved)
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:      c.Query("q"),
		Limit:  parseInt(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset"), 0),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		q.Status = models.NormalizeStatus(raw)
		if q.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	// genres=Action,Drama OR genres=Action&genres=Drama
	genres := c.QueryArray("genres")
	if len(genres) == 0 {
		if s := c.Query("genres"); s != "" {
			genres = strings.Split(s, ",")
		}
	}
	q.Genres = genres

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	entry, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

type updateReq struct {
	Status             *string   `json:"status"`
	CurrentEpisode     *int      `json:"current_episode"`
	Rating             *int      `json:"rating"`
	StreamingPlatforms *[]string `json:"streaming_platforms"`
	TotalEpisodes      *int      `json:"total_episodes"` // refreshed catalog total, if the UI knows it
}

func (h *Handler) update(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	patch := models.EntryPatch{
		CurrentEpisode:     req.CurrentEpisode,
		Rating:             req.Rating,
		StreamingPlatforms: req.StreamingPlatforms,
	}

	if req.Status != nil {
		status := models.NormalizeStatus(*req.Status)
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status must be one of: watching, completed, on_hold, dropped, plan_to_watch",
			})
			return
		}
		patch.Status = &status
	}
	if req.CurrentEpisode != nil && *req.CurrentEpisode < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_episode must be >= 0"})
		return
	}
	// rating 0 clears an existing rating
	if req.Rating != nil && *req.Rating != 0 && (*req.Rating < 1 || *req.Rating > 10) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 10"})
		return
	}
	if req.TotalEpisodes != nil && *req.TotalEpisodes < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_episodes must be >= 0"})
		return
	}

	entry, err := h.Repo.UpdateEntry(c.Request.Context(), id, patch, req.TotalEpisodes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.broadcastUpdate(entry)
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := events.ShelfEvent{
			Type:    "shelf.delete",
			AnimeID: id,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) history(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	limit := parseInt(c.Query("limit"), 50)
	offset := parseInt(c.Query("offset"), 0)

	items, total, err := h.Repo.ListWatchEvents(c.Request.Context(), id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Repo.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) broadcastUpdate(entry *models.ShelfEntry) {
	if h.Hub == nil {
		return
	}
	ev := events.ShelfEvent{
		Type:           "shelf.update",
		AnimeID:        entry.MalID,
		Title:          entry.Title,
		CurrentEpisode: entry.CurrentEpisode,
		Status:         entry.Status,
		At:             time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}

func entryID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
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
