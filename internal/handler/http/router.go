package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Services bundles the application services the router exposes.
type Services struct {
	Auth          *service.AuthService
	Catalog       *service.CatalogService
	Orders        *service.OrderService
	Reviews       *service.ReviewService
	Notifications *service.NotificationService
	Admin         *service.AdminService
}

// TokenValidatorFrom adapts the JWT manager to the auth middleware contract.
func TokenValidatorFrom(jwtManager *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Principal, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	services Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(corsConfig))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(services.Auth, logger)
	productHandler := NewProductHandler(services.Catalog, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)
	reviewHandler := NewReviewHandler(services.Reviews, logger)
	notificationHandler := NewNotificationHandler(services.Notifications, logger)
	adminHandler := NewAdminHandler(services.Admin, logger)

	requireAuth := middleware.Auth(TokenValidatorFrom(jwtManager))
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/google", authHandler.GoogleLogin)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Catalog reads are safe to cache briefly at the edge.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/products", productHandler.ListProducts)
			r.Get("/products/suggestions", productHandler.Suggest)
			r.Get("/products/{id}", productHandler.GetProduct)
			r.Get("/products/{id}/reviews", reviewHandler.ListReviews)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/users/me", authHandler.Profile)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Post("/orders/{id}/verify-payment", orderHandler.VerifyPayment)

			r.Post("/products/{id}/reviews", reviewHandler.CreateReview)

			r.Get("/notifications", notificationHandler.ListNotifications)
			r.Get("/notifications/unread-count", notificationHandler.UnreadCount)
			r.Put("/notifications/{id}/read", notificationHandler.MarkRead)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)

			r.Post("/products", productHandler.CreateProduct)
			r.Put("/products/{id}", productHandler.UpdateProduct)
			r.Delete("/products/{id}", productHandler.DeleteProduct)

			r.Put("/orders/{id}/status", orderHandler.UpdateOrderStatus)
			r.Get("/orders", adminHandler.ListOrders)

			r.Post("/notifications", notificationHandler.CreateNotification)
			r.Delete("/notifications/{id}", notificationHandler.DeleteNotification)

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/customers", adminHandler.ListCustomers)
		})
	})

	return r
}
