package handler

import (
	"context"
	"errors"
	"net/http"

	"creator-performance-ledger/internal/config"
	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/services/rewards"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RollupService interface {
	Rollup(ctx context.Context, nodeID uuid.UUID, scope models.Role) (*rewards.Rollup, error)
}

type RollupHandler struct {
	rollups RollupService
	log     logrus.FieldLogger
}

func NewRollupHandler(r RollupService, log logrus.FieldLogger) *RollupHandler {
	return &RollupHandler{rollups: r, log: log}
}

func (h *RollupHandler) Get(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("nodeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node ID"})
		return
	}
	scope := models.Role(c.Param("scope"))

	rollup, err := h.rollups.Rollup(c.Request.Context(), nodeID, scope)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, rollup)
	case errors.Is(err, rewards.ErrNodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, rewards.ErrInvalidScope), errors.Is(err, rewards.ErrScopeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		config.LogError(h.log, "handler", "RollupHandler.Get", "compute rollup", gin.H{"scope": scope, "node_id": nodeID}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rollup failed"})
	}
}
