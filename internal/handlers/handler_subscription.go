package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack_app/internal/core/domain"
	"github.com/fintrack/fintrack_app/internal/core/services"
	"github.com/fintrack/fintrack_app/internal/dto"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

// subscriptionHandler handles HTTP requests related to subscriptions.
type subscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func newSubscriptionHandler(ss *services.SubscriptionService) *subscriptionHandler {
	return &subscriptionHandler{subscriptionService: ss}
}

// registerSubscriptionRoutes registers routes related to subscriptions.
func registerSubscriptionRoutes(rg *gin.RouterGroup, subscriptionService *services.SubscriptionService) {
	h := newSubscriptionHandler(subscriptionService)

	subs := rg.Group("/subscriptions")
	{
		subs.POST("", h.createSubscription)
		subs.GET("", h.listSubscriptions)
		subs.GET("/:id", h.getSubscription)
		subs.PUT("/:id", h.updateSubscription)
		subs.DELETE("/:id", h.deleteSubscription)
		subs.POST("/:id/pause", h.pauseSubscription)
		subs.POST("/:id/resume", h.resumeSubscription)
		subs.POST("/:id/cancel", h.cancelSubscription)
	}
}

func (h *subscriptionHandler) createSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubscription", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to create subscription")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSubscriptionResponse(*sub))
}

func (h *subscriptionHandler) getSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sub, err := h.subscriptionService.GetSubscriptionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, "Failed to retrieve subscription")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(*sub))
}

func (h *subscriptionHandler) listSubscriptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), domain.SubscriptionStatus(c.Query("status")))
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list subscriptions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListSubscriptionsResponse(subs))
}

func (h *subscriptionHandler) updateSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSubscription", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	sub, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to update subscription")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(*sub))
}

func (h *subscriptionHandler) deleteSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.subscriptionService.DeleteSubscription(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, logger, err, "Failed to delete subscription")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *subscriptionHandler) pauseSubscription(c *gin.Context) {
	h.changeStatus(c, h.subscriptionService.PauseSubscription, "Failed to pause subscription")
}

func (h *subscriptionHandler) resumeSubscription(c *gin.Context) {
	h.changeStatus(c, h.subscriptionService.ResumeSubscription, "Failed to resume subscription")
}

func (h *subscriptionHandler) cancelSubscription(c *gin.Context) {
	h.changeStatus(c, h.subscriptionService.CancelSubscription, "Failed to cancel subscription")
}

func (h *subscriptionHandler) changeStatus(c *gin.Context, op func(ctx context.Context, id string) (*domain.Subscription, error), fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sub, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, logger, err, fallback)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponse(*sub))
}
