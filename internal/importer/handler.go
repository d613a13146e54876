package importer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animeshelf/internal/shelf"
)

type Handler struct {
	Importer *Importer
	Repo     *shelf.Repo
}

func NewHandler(im *Importer, repo *shelf.Repo) *Handler {
	return &Handler{Importer: im, Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/shelf/import", h.importCSV)
	rg.GET("/shelf/export", h.exportCSV)
}

// importCSV accepts either a multipart upload (field "file") or a raw
// CSV request body.
func (h *Handler) importCSV(c *gin.Context) {
	var result *Result
	var err error

	if file, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := file.Open()
		if oerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
			return
		}
		defer f.Close()
		result, err = h.Importer.ImportCSV(c.Request.Context(), f)
	} else {
		result, err = h.Importer.ImportCSV(c.Request.Context(), c.Request.Body)
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) exportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="animeshelf.csv"`)

	if err := ExportCSV(c.Request.Context(), h.Repo, c.Writer); err != nil {
		// headers are already out; nothing useful left to send
		c.Status(http.StatusInternalServerError)
	}
}
