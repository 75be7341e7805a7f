package handler

import (
	"context"
	"io"
	"net/http"

	"creator-performance-ledger/internal/config"
	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/services/importer"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Importer interface {
	RunFile(ctx context.Context, filename string, r io.Reader, mode importer.BalanceMode, actor models.Actor) (*importer.Report, error)
}

type ImportHandler struct {
	importer Importer
	log      logrus.FieldLogger
}

func NewImportHandler(i Importer, log logrus.FieldLogger) *ImportHandler {
	return &ImportHandler{importer: i, log: log}
}

// Upload runs a spreadsheet import synchronously and returns the batch report.
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	mode, err := importer.ParseMode(c.PostForm("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := actorFrom(c)
	report, err := h.importer.RunFile(c.Request.Context(), header.Filename, file, mode, actor)
	if err != nil {
		if importer.Rejected(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "file": header.Filename})
			return
		}
		config.LogError(h.log, "handler", "ImportHandler.Upload", "run import", gin.H{"file": header.Filename, "actor": actor.String()}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"summary": importer.HumanSummary(report),
	})
}
