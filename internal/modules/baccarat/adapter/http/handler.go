// Package http exposes the baccarat table engine over the polled HTTP API.
package http

import (
	"errors"
	"net/http"

	"github.com/frankieli/baccarat_table/internal/middleware"
	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	"github.com/frankieli/baccarat_table/internal/modules/baccarat/usecase"
	"github.com/frankieli/baccarat_table/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the baccarat module
type Handler struct {
	syncUC *usecase.SyncUseCase
	betUC  *usecase.BetUseCase
}

// NewHandler creates a new HTTP handler
func NewHandler(syncUC *usecase.SyncUseCase, betUC *usecase.BetUseCase) *Handler {
	return &Handler{
		syncUC: syncUC,
		betUC:  betUC,
	}
}

// RegisterRoutes registers all baccarat routes to the given router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tables/:id/sync", h.Sync)
	router.POST("/tables/:id/bets", h.PlaceBet)
	router.DELETE("/tables/:id/bets", h.ClearBets)
}

type placeBetRequest struct {
	Zone   string `json:"zone" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

type syncResponse struct {
	*usecase.Snapshot
	MyWagers []*domain.Wager `json:"my_wagers,omitempty"`
	Balance  *int64          `json:"balance,omitempty"`
}

// Sync returns the table's current state, advancing it first if its
// phase deadline has passed. Safe to call repeatedly and concurrently.
func (h *Handler) Sync(c *gin.Context) {
	ctx := c.Request.Context()
	tableID := c.Param("id")

	snap, err := h.syncUC.Synchronize(ctx, tableID)
	if err != nil {
		logger.Error(ctx).Err(err).Str("table_id", tableID).Msg("synchronize failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "synchronization failed"})
		return
	}

	resp := syncResponse{Snapshot: snap}
	if userID, ok := middleware.CurrentUser(c); ok {
		wagers, balance, err := h.betUC.PlayerState(ctx, tableID, userID)
		if err != nil {
			logger.Warn(ctx).Err(err).Int64("user_id", userID).Msg("failed to load player state")
		} else {
			resp.MyWagers = wagers
			resp.Balance = &balance
		}
	}
	c.JSON(http.StatusOK, resp)
}

// PlaceBet stakes points on a betting zone of the current round
func (h *Handler) PlaceBet(c *gin.Context) {
	ctx := c.Request.Context()
	tableID := c.Param("id")

	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone, err := domain.ParseZone(req.Zone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.betUC.PlaceBet(ctx, tableID, userID, zone, req.Amount)
	if err != nil {
		h.writeBetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// ClearBets removes the caller's unresolved wagers for the current
// round and refunds them
func (h *Handler) ClearBets(c *gin.Context) {
	ctx := c.Request.Context()
	tableID := c.Param("id")

	userID, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	balance, err := h.betUC.ClearBets(ctx, tableID, userID)
	if err != nil {
		h.writeBetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// writeBetError maps the error taxonomy onto HTTP statuses so UI code
// can branch without exception handling
func (h *Handler) writeBetError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, domain.ErrInsufficientPoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient points"})
	case errors.Is(err, domain.ErrNotBetting):
		c.JSON(http.StatusConflict, gin.H{"error": "table is not in betting phase"})
	case errors.Is(err, domain.ErrNeedsResync):
		// One bounded retry already happened; report contention plainly.
		c.JSON(http.StatusConflict, gin.H{"error": "round is transitioning, try again"})
	default:
		logger.Error(ctx).Err(err).Msg("bet operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
