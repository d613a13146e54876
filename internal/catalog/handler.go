package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)                 // GET /catalog/search?q=...&limit=...
	rg.GET("/anime/:id", h.getByID)             // GET /catalog/anime/:id
	rg.GET("/season/:year/:season", h.season)   // GET /catalog/season/2024/fall
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	items := h.Client.Search(c.Request.Context(), q, limit)
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	a := h.Client.GetByID(c.Request.Context(), id)
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) season(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	items := h.Client.GetSeason(c.Request.Context(), year, c.Param("season"))
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}
