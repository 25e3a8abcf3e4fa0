package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/core/services"
	"github.com/fintrack/fintrack_app/internal/dto"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

// debtHandler handles HTTP requests related to debts.
type debtHandler struct {
	debtService *services.DebtService
}

func newDebtHandler(ds *services.DebtService) *debtHandler {
	return &debtHandler{debtService: ds}
}

// registerDebtRoutes registers routes related to debts.
func registerDebtRoutes(rg *gin.RouterGroup, debtService *services.DebtService) {
	h := newDebtHandler(debtService)

	debts := rg.Group("/debts")
	{
		debts.POST("", h.createDebt)
		debts.GET("", h.listDebts)
		debts.GET("/:id", h.getDebt)
		debts.PUT("/:id", h.updateDebt)
		debts.DELETE("/:id", h.deleteDebt)
		debts.POST("/:id/payments", h.makePayment)
		debts.POST("/:id/mark-paid", h.markPaid)
	}
}

func (h *debtHandler) createDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDebt", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	debt, err := h.debtService.CreateDebt(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create debt")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDebtResponse(*debt))
}

func (h *debtHandler) getDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	debt, err := h.debtService.GetDebtByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve debt")
		return
	}
	c.JSON(http.StatusOK, dto.ToDebtResponse(*debt))
}

// listDebts supports filtering by status and direction (receivable=true/false).
func (h *debtHandler) listDebts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	filter := portsrepo.DebtFilter{Status: domain.DebtStatus(c.Query("status"))}
	if recv := c.Query("receivable"); recv != "" {
		val := recv == "true"
		filter.IsReceivable = &val
	}

	debts, err := h.debtService.ListDebts(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list debts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListDebtsResponse(debts))
}

func (h *debtHandler) updateDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDebt", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	debt, err := h.debtService.UpdateDebt(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update debt")
		return
	}
	c.JSON(http.StatusOK, dto.ToDebtResponse(*debt))
}

func (h *debtHandler) deleteDebt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.debtService.DeleteDebt(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, logger, err, "Failed to delete debt")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *debtHandler) makePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DebtPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for DebtPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.ParseInLocation(domain.DateFormat, req.Date, time.UTC)
		if err != nil {
			handleServiceError(c, logger, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date), "Failed to record debt payment")
			return
		}
		date = parsed
	}

	debt, txn, err := h.debtService.MakePartialPayment(c.Request.Context(), c.Param("id"), *req.Amount, date, req.Notes)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to record debt payment")
		return
	}

	resp := dto.DebtPaymentResponse{Debt: dto.ToDebtResponse(*debt)}
	if txn != nil {
		txnResp := dto.ToTransactionResponse(*txn)
		resp.Transaction = &txnResp
	}
	c.JSON(http.StatusOK, resp)
}

func (h *debtHandler) markPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	debt, txn, err := h.debtService.MarkDebtPaid(c.Request.Context(), c.Param("id"), time.Now().UTC())
	if err != nil {
		handleServiceError(c, logger, err, "Failed to mark debt paid")
		return
	}

	resp := dto.DebtPaymentResponse{Debt: dto.ToDebtResponse(*debt)}
	if txn != nil {
		txnResp := dto.ToTransactionResponse(*txn)
		resp.Transaction = &txnResp
	}
	c.JSON(http.StatusOK, resp)
}
