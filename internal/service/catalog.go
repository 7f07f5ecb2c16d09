package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// suggestLimit caps the number of search suggestions returned.
const suggestLimit = 10

// minSuggestQueryLen is the minimum query length before suggestions run.
const minSuggestQueryLen = 2

// CatalogService implements the business logic for the product catalog.
type CatalogService struct {
	products      repository.ProductRepository
	notifications repository.NotificationRepository
	suggestions   *cache.SuggestionCache
	producer      *event.Producer
	logger        *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	products repository.ProductRepository,
	notifications repository.NotificationRepository,
	suggestions *cache.SuggestionCache,
	producer *event.Producer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:      products,
		notifications: notifications,
		suggestions:   suggestions,
		producer:      producer,
		logger:        logger,
	}
}

// List returns products matching the filter with the total count.
func (s *CatalogService) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	return s.products.List(ctx, filter)
}

// Get returns a product by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Category      string
	MRP           float64
	OurPrice      float64
	Discount      float64
	InStock       bool
	StockQuantity int
	Images        []string
	FAQs          []domain.FAQ
}

// Create validates and persists a new product, computes derived prices,
// announces it to all users, and emits a product.created event. The
// announcement and event are fire-and-forget.
func (s *CatalogService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.InvalidInput("description is required")
	}
	if len(input.Images) == 0 {
		return nil, apperrors.InvalidInput("at least one image is required")
	}
	if input.MRP <= 0 {
		return nil, apperrors.InvalidInput("mrp must be positive")
	}
	if input.OurPrice <= 0 {
		return nil, apperrors.InvalidInput("our_price must be positive")
	}
	if input.OurPrice > input.MRP {
		return nil, apperrors.InvalidInput("our_price must not exceed mrp")
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid category %q", input.Category))
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		MRP:           input.MRP,
		OurPrice:      input.OurPrice,
		Discount:      input.Discount,
		InStock:       input.InStock,
		StockQuantity: input.StockQuantity,
		Images:        input.Images,
		FAQs:          input.FAQs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	product.ApplyDerivedPrices()

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.invalidateSuggestions(ctx)

	// Announce to all users. A failure here must not fail product creation.
	broadcast := &domain.Notification{
		ID:        uuid.New().String(),
		Title:     "New Product Added!",
		Message:   fmt.Sprintf("%s is now available for %.2f", product.Name, product.OurPrice),
		Type:      domain.NotificationTypeProduct,
		CreatedAt: now,
	}
	if err := s.notifications.Create(ctx, broadcast); err != nil {
		s.logger.ErrorContext(ctx, "failed to create product broadcast",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category", product.Category),
	)

	return product, nil
}

// Update applies a partial update. Price changes recompute the derived
// fields in the repository.
func (s *CatalogService) Update(ctx context.Context, id string, update repository.ProductUpdate) (*domain.Product, error) {
	if update.Category != nil && !domain.IsValidCategory(*update.Category) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid category %q", *update.Category))
	}
	if update.MRP != nil && *update.MRP <= 0 {
		return nil, apperrors.InvalidInput("mrp must be positive")
	}
	if update.OurPrice != nil && *update.OurPrice <= 0 {
		return nil, apperrors.InvalidInput("our_price must be positive")
	}

	product, err := s.products.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.invalidateSuggestions(ctx)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", id),
	)

	return product, nil
}

// Delete removes a product.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSuggestions(ctx)

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// Suggest returns up to ten lightweight matches for the query. Queries
// shorter than two characters return an empty list without touching the
// store. Results are cached briefly; cache failures fall through to SQL.
func (s *CatalogService) Suggest(ctx context.Context, query string) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSuggestQueryLen {
		return []domain.Suggestion{}, nil
	}

	if cached, ok, err := s.suggestions.Get(ctx, query); err != nil {
		s.logger.WarnContext(ctx, "suggestion cache read failed",
			slog.String("error", err.Error()),
		)
	} else if ok {
		return cached, nil
	}

	results, err := s.products.Suggest(ctx, query, suggestLimit)
	if err != nil {
		return nil, err
	}

	if err := s.suggestions.Set(ctx, query, results); err != nil {
		s.logger.WarnContext(ctx, "suggestion cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return results, nil
}

func (s *CatalogService) invalidateSuggestions(ctx context.Context) {
	if err := s.suggestions.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "suggestion cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
