package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/dto"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests for manually entered payments.
type paymentHandler struct {
	paymentService portssvc.ManualPaymentSvc
}

// RegisterPaymentRoutes registers routes related to manual payments.
func RegisterPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.ManualPaymentSvc) {
	h := &paymentHandler{paymentService: paymentService}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("", h.listPayments)
		payments.POST("/:transactionID/cancel", h.cancelPayment)
	}
}

// recordPayment godoc
// @Summary Record a single payment
// @Description Validates and posts one payment entered by a cashier
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.ManualPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]interface{} "Validation or balance failure"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Security BearerAuth
// @Router /payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to record payment", slog.String("member_number", req.MemberNumber), slog.String("payment_type", req.PaymentType))
	txn, err := h.paymentService.RecordPayment(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record payment")
		return
	}

	logger.Info("Payment recorded", slog.String("transaction_id", txn.ID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(txn))
}

// cancelPayment godoc
// @Summary Cancel a posted payment
// @Description Reverts the member balance and deletes or reverses the journal entry
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   body body dto.CancelPaymentRequest true "Cancellation reason"
// @Success 200 {object} domain.RollbackResult
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Payment cannot be cancelled"
// @Security BearerAuth
// @Router /payments/{transactionID}/cancel [post]
func (h *paymentHandler) cancelPayment(c *gin.Context) {
	transactionID := c.Param("transactionID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.paymentService.CancelPayment(c.Request.Context(), transactionID, req.Reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel payment")
		return
	}

	logger.Info("Payment cancelled", slog.Bool("journal_reversed", result.JournalReversed))
	c.JSON(http.StatusOK, result)
}

// listPayments godoc
// @Summary List payments
// @Description Lists payment transactions, newest first, with token pagination
// @Tags payments
// @Produce  json
// @Param   memberId query string false "Member ID"
// @Param   mode query string false "manual or import"
// @Param   status query string false "Transaction status"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.paymentService.ListPayments(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, resp)
}
