package handler

import (
	"context"
	"net/http"

	"creator-performance-ledger/internal/config"
	"creator-performance-ledger/internal/services/reset"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ResetTicker interface {
	Tick(ctx context.Context) (reset.Result, error)
}

type ResetHandler struct {
	scheduler ResetTicker
	log       logrus.FieldLogger
}

func NewResetHandler(s ResetTicker, log logrus.FieldLogger) *ResetHandler {
	return &ResetHandler{scheduler: s, log: log}
}

// RunNow triggers one reset tick. Records already reset this month are left alone.
func (h *ResetHandler) RunNow(c *gin.Context) {
	h.log.WithField("actor", actorFrom(c).String()).Info("manual monthly reset requested")
	res, err := h.scheduler.Tick(c.Request.Context())
	if err != nil {
		config.LogError(h.log, "handler", "ResetHandler.RunNow", "reset tick", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "monthly reset failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
