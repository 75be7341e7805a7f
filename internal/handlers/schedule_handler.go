package handler

import (
	"context"
	"errors"
	"net/http"

	"creator-performance-ledger/internal/config"
	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository"
	"creator-performance-ledger/internal/services/schedule"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ScheduleService interface {
	Apply(ctx context.Context, creatorID uuid.UUID, u schedule.Update) (*models.ScheduleRecord, error)
	Deactivate(ctx context.Context, creatorID uuid.UUID) (*models.ScheduleRecord, error)
}

type ScheduleHandler struct {
	schedules ScheduleService
	members   MemberFinder
	log       logrus.FieldLogger
}

func NewScheduleHandler(s ScheduleService, members MemberFinder, log logrus.FieldLogger) *ScheduleHandler {
	return &ScheduleHandler{schedules: s, members: members, log: log}
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	creator, ok := lookupCreator(c, h.members, h.log)
	if !ok {
		return
	}

	var payload struct {
		HoursPerDay *float64 `json:"hours_per_day"`
		DaysPerWeek *int     `json:"days_per_week"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	u := schedule.Update{HoursPerDay: payload.HoursPerDay, DaysPerWeek: payload.DaysPerWeek}
	if u.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours_per_day or days_per_week required"})
		return
	}

	rec, err := h.schedules.Apply(c.Request.Context(), creator.ID, u)
	if err != nil {
		config.LogError(h.log, "handler", "ScheduleHandler.Update", "apply schedule", payload, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule updated", "schedule": rec})
}

func (h *ScheduleHandler) Deactivate(c *gin.Context) {
	creator, ok := lookupCreator(c, h.members, h.log)
	if !ok {
		return
	}

	rec, err := h.schedules.Deactivate(c.Request.Context(), creator.ID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator has no schedule"})
		return
	}
	if err != nil {
		config.LogError(h.log, "handler", "ScheduleHandler.Deactivate", "deactivate schedule", creator.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deactivate failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule deactivated", "schedule": rec})
}
