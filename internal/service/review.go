package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ReviewService implements review submission and listing.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for submitting a review.
type CreateReviewInput struct {
	ProductID string
	UserID    string
	Rating    int
	Comment   string
}

// Create gates the review on a confirmed purchase, inserts it as verified,
// and recomputes the product's rating in the same transaction.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	// The product must exist before checking eligibility so a bad id reads
	// as 404 rather than 403.
	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	purchased, err := s.reviews.HasConfirmedPurchase(ctx, input.UserID, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}
	if !purchased {
		return nil, apperrors.Forbidden("reviews require a confirmed purchase of the product")
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Verified:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListByProduct returns a product's reviews newest first with a summary.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]domain.Review, *domain.ReviewSummary, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
