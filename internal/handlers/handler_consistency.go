package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/dto"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

type consistencyHandler struct {
	consistency portssvc.ConsistencySvc
}

// RegisterConsistencyRoutes registers the ledger check and repair routes.
func RegisterConsistencyRoutes(rg *gin.RouterGroup, consistency portssvc.ConsistencySvc) {
	h := &consistencyHandler{consistency: consistency}

	rg.GET("/consistency", h.check)
	rg.POST("/consistency/repair", h.repair)
}

// check godoc
// @Summary Check ledger consistency
// @Description Compares member balances with history, journal balance, and transaction-journal links
// @Tags consistency
// @Produce  json
// @Success 200 {object} dto.ConsistencyResponse
// @Failure 503 {object} map[string]string "Ledger store unavailable"
// @Security BearerAuth
// @Router /consistency [get]
func (h *consistencyHandler) check(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ctx := c.Request.Context()

	saldo, err := h.consistency.ValidateSaldo(ctx)
	if err != nil {
		respondError(c, logger, err, "Failed to check balances")
		return
	}
	integrity, err := h.consistency.ValidateJournalIntegrity(ctx)
	if err != nil {
		respondError(c, logger, err, "Failed to check journals")
		return
	}
	cross, err := h.consistency.ValidateCrossMode(ctx)
	if err != nil {
		respondError(c, logger, err, "Failed to check transaction links")
		return
	}

	resp := dto.ConsistencyResponse{
		Valid:            saldo.Valid && integrity.Valid && cross.Valid,
		Saldo:            saldo,
		JournalIntegrity: integrity,
		CrossMode:        cross,
	}
	if !resp.Valid {
		logger.Warn("Ledger inconsistencies found",
			slog.Int("saldo", len(saldo.Errors)),
			slog.Int("journal", len(integrity.Errors)),
			slog.Int("cross_mode", len(cross.Errors)))
	}
	c.JSON(http.StatusOK, resp)
}

// repair godoc
// @Summary Repair ledger inconsistencies
// @Description Runs every check, repairs what can be repaired safely and re-checks
// @Tags consistency
// @Produce  json
// @Success 200 {object} dto.RepairResponse
// @Failure 503 {object} map[string]string "Ledger store unavailable"
// @Security BearerAuth
// @Router /consistency/repair [post]
func (h *consistencyHandler) repair(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ctx := c.Request.Context()

	before, err := h.consistency.ValidateAll(ctx)
	if err != nil {
		respondError(c, logger, err, "Failed to check ledger")
		return
	}
	repaired, err := h.consistency.AttemptDataRepair(ctx, before)
	if err != nil {
		respondError(c, logger, err, "Failed to repair ledger")
		return
	}
	after, err := h.consistency.ValidateAll(ctx)
	if err != nil {
		respondError(c, logger, err, "Failed to re-check ledger")
		return
	}

	logger.Info("Ledger repair finished",
		slog.Int("repaired", len(repaired.Repaired)),
		slog.Int("unrepaired", len(repaired.Unrepaired)))
	c.JSON(http.StatusOK, dto.RepairResponse{Before: before, Repair: *repaired, After: after})
}
