package handler

import (
	"context"
	"errors"
	"net/http"

	"creator-performance-ledger/internal/config"
	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository"
	"creator-performance-ledger/internal/services/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BalanceApplier interface {
	Apply(ctx context.Context, m ledger.Mutation) (ledger.Outcome, error)
}

type BalanceReader interface {
	FindBalance(ctx context.Context, creatorID uuid.UUID) (*models.BalanceRecord, error)
}

type MemberFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

type LedgerHandler struct {
	engine   BalanceApplier
	balances BalanceReader
	members  MemberFinder
	log      logrus.FieldLogger
}

func NewLedgerHandler(engine BalanceApplier, balances BalanceReader, members MemberFinder, log logrus.FieldLogger) *LedgerHandler {
	return &LedgerHandler{engine: engine, balances: balances, members: members, log: log}
}

// UpdateBalance applies a manual set/add/subtract edit.
func (h *LedgerHandler) UpdateBalance(c *gin.Context) {
	creator, ok := lookupCreator(c, h.members, h.log)
	if !ok {
		return
	}

	var payload struct {
		Op     models.BalanceOp `json:"op"`
		Amount *int64           `json:"amount"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount required"})
		return
	}

	out, err := h.engine.Apply(c.Request.Context(), ledger.Mutation{
		CreatorID: creator.ID,
		Op:        payload.Op,
		Amount:    *payload.Amount,
		Actor:     actorFrom(c),
	})
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidOp) || errors.Is(err, ledger.ErrNegativeAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		config.LogError(h.log, "handler", "LedgerHandler.UpdateBalance", "apply mutation", payload, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "balance updated", "balance": out.Record, "path": out.Path})
}

func (h *LedgerHandler) GetBalance(c *gin.Context) {
	creator, ok := lookupCreator(c, h.members, h.log)
	if !ok {
		return
	}

	rec, err := h.balances.FindBalance(c.Request.Context(), creator.ID)
	if errors.Is(err, repository.ErrNotFound) {
		// No record yet reads as zero.
		c.JSON(http.StatusOK, gin.H{"balance": models.BalanceRecord{CreatorID: creator.ID}})
		return
	}
	if err != nil {
		config.LogError(h.log, "handler", "LedgerHandler.GetBalance", "find balance", creator.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": rec})
}

// lookupCreator resolves the :id param to a creator, writing the error
// response itself when it cannot.
func lookupCreator(c *gin.Context, members MemberFinder, log logrus.FieldLogger) (*models.Member, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator ID"})
		return nil, false
	}
	m, err := members.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && m.Role != models.RoleCreator) {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return nil, false
	}
	if err != nil {
		config.LogError(log, "handler", "lookupCreator", "get member", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load creator"})
		return nil, false
	}
	return m, true
}
