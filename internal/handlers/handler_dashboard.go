package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/core/services"
	"github.com/fintrack/fintrack_app/internal/dto"
	"github.com/fintrack/fintrack_app/internal/middleware"
	"github.com/fintrack/fintrack_app/internal/platform/config"
)

// dashboardHandler composes the overview: it runs the lazy sweeps first
// (overdue debts, subscription billing) so the snapshot reflects today, then
// gathers metrics, trends and the full entity lists.
type dashboardHandler struct {
	container   *services.ServiceContainer
	trendDays   int
	trendMonths int
}

func registerDashboardRoutes(rg *gin.RouterGroup, cfg *config.Config, container *services.ServiceContainer) {
	h := &dashboardHandler{
		container:   container,
		trendDays:   cfg.TrendDays,
		trendMonths: cfg.TrendMonths,
	}
	rg.GET("/dashboard", h.getDashboard)
}

func (h *dashboardHandler) getDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)
	today := time.Now().UTC()

	// Sweeps are idempotent per day, so running them on every dashboard read
	// is safe and keeps statuses current without a background scheduler.
	if _, err := h.container.Debt.SweepOverdue(ctx, today); err != nil {
		handleServiceError(c, logger, err, "Failed to refresh overdue debts")
		return
	}
	if _, err := h.container.Subscription.SweepBilling(ctx, today); err != nil {
		handleServiceError(c, logger, err, "Failed to run subscription billing")
		return
	}

	liquidity, err := h.container.Reporting.Liquidity(ctx)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute liquidity")
		return
	}
	netWorth, err := h.container.Reporting.NetWorth(ctx)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute net worth")
		return
	}
	savings, err := h.container.Reporting.SavingsStats(ctx, today.Year(), today.Month())
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute savings stats")
		return
	}

	liquidityTrend, err := h.container.Trend.LiquidityTrend(ctx, h.trendDays)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to reconstruct liquidity trend")
		return
	}
	netWorthTrend, err := h.container.Trend.NetWorthTrend(ctx, h.trendDays)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to reconstruct net worth trend")
		return
	}
	monthlySavings, err := h.container.Trend.MonthlySavings(ctx, h.trendMonths)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to compute monthly savings")
		return
	}

	accounts, err := h.container.Account.ListAccounts(ctx)
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list accounts")
		return
	}
	debts, err := h.container.Debt.ListDebts(ctx, portsrepo.DebtFilter{})
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list debts")
		return
	}
	subs, err := h.container.Subscription.ListSubscriptions(ctx, "")
	if err != nil {
		handleServiceError(c, logger, err, "Failed to list subscriptions")
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Liquidity: liquidity,
		NetWorth: dto.NetWorthResponse{
			Assets:      netWorth.Assets,
			Liabilities: netWorth.Liabilities,
			NetWorth:    netWorth.NetWorth,
			Currency:    services.DefaultCurrency,
		},
		Savings: dto.SavingsStatsResponse{
			TotalBalance:      savings.TotalBalance,
			MonthContribution: savings.MonthContribution,
			Currency:          services.DefaultCurrency,
		},
		LiquidityTrend: dto.ToTrendPointResponses(liquidityTrend),
		NetWorthTrend:  dto.ToTrendPointResponses(netWorthTrend),
		MonthlySavings: dto.ToMonthlySavingsResponses(monthlySavings),
		Accounts:       dto.ToListAccountsResponse(accounts).Accounts,
		Debts:          dto.ToListDebtsResponse(debts).Debts,
		Subscriptions:  dto.ToListSubscriptionsResponse(subs).Subscriptions,
	})
}
