package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/repository"
)

// AdminService exposes the aggregate queries behind the admin dashboard.
type AdminService struct {
	admin  repository.AdminRepository
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(admin repository.AdminRepository, logger *slog.Logger) *AdminService {
	return &AdminService{
		admin:  admin,
		logger: logger,
	}
}

// Dashboard returns storefront-wide totals.
func (s *AdminService) Dashboard(ctx context.Context) (*repository.DashboardStats, error) {
	return s.admin.DashboardStats(ctx)
}

// Customers returns all non-admin users with purchase aggregates.
func (s *AdminService) Customers(ctx context.Context) ([]repository.CustomerSummary, error) {
	return s.admin.ListCustomers(ctx)
}

// Orders returns all orders with customer details.
func (s *AdminService) Orders(ctx context.Context) ([]repository.AdminOrder, error) {
	return s.admin.ListOrders(ctx)
}
