package services

import (
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/currency"
)

// ServiceContainer holds all services handlers depend on.
type ServiceContainer struct {
	Account      *AccountService
	Transaction  *TransactionService
	Debt         *DebtService
	Subscription *SubscriptionService
	Reporting    *ReportingService
	Trend        *TrendService
}

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, converter *currency.Converter) *ServiceContainer {
	container := &ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo, converter)
	container.Transaction = NewTransactionService(repos.TransactionRepo, repos.AccountRepo)
	container.Debt = NewDebtService(repos.DebtRepo)
	container.Subscription = NewSubscriptionService(repos.SubscriptionRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.TransactionRepo, converter)
	container.Trend = NewTrendService(container.Reporting, repos.TransactionRepo, repos.DebtRepo, converter)

	return container
}
