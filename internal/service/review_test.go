package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Mock Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) HasConfirmedPurchase(ctx context.Context, userID, productID string) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, *domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Get(1).(*domain.ReviewSummary), args.Error(2)
}

func newReviewService(reviews *mockReviewRepository, products *mockProductRepository) *ReviewService {
	return NewReviewService(reviews, products, newTestLogger())
}

// --- Create Tests ---

func TestReviewService_Create_Success(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newReviewService(reviews, products)

	products.On("GetByID", mock.Anything, "prod-001").Return(&domain.Product{ID: "prod-001"}, nil)
	reviews.On("HasConfirmedPurchase", mock.Anything, "user-001", "prod-001").Return(true, nil)
	reviews.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.Verified && r.Rating == 5 && r.ProductID == "prod-001"
	})).Return(nil)

	review, err := svc.Create(context.Background(), CreateReviewInput{
		ProductID: "prod-001",
		UserID:    "user-001",
		Rating:    5,
		Comment:   "Excellent",
	})
	require.NoError(t, err)
	assert.True(t, review.Verified)
	reviews.AssertExpectations(t)
}

func TestReviewService_Create_NotPurchased(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newReviewService(reviews, products)

	products.On("GetByID", mock.Anything, "prod-001").Return(&domain.Product{ID: "prod-001"}, nil)
	reviews.On("HasConfirmedPurchase", mock.Anything, "user-001", "prod-001").Return(false, nil)

	_, err := svc.Create(context.Background(), CreateReviewInput{
		ProductID: "prod-001",
		UserID:    "user-001",
		Rating:    4,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	reviews.AssertNotCalled(t, "Create")
}

func TestReviewService_Create_RatingBounds(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newReviewService(reviews, products)

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Create(context.Background(), CreateReviewInput{
			ProductID: "prod-001",
			UserID:    "user-001",
			Rating:    rating,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	products.AssertNotCalled(t, "GetByID")
}

func TestReviewService_Create_UnknownProduct(t *testing.T) {
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newReviewService(reviews, products)

	products.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	_, err := svc.Create(context.Background(), CreateReviewInput{
		ProductID: "missing",
		UserID:    "user-001",
		Rating:    3,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	reviews.AssertNotCalled(t, "HasConfirmedPurchase")
}

// --- ListByProduct Tests ---

func TestReviewService_ListByProduct(t *testing.T) {
	reviews := new(mockReviewRepository)
	svc := newReviewService(reviews, new(mockProductRepository))

	expected := []domain.Review{{ID: "rev-001", Rating: 5, UserName: "Asha"}}
	summary := &domain.ReviewSummary{AverageRating: 5, TotalReviews: 1}
	reviews.On("ListByProduct", mock.Anything, "prod-001").Return(expected, summary, nil)

	got, gotSummary, err := svc.ListByProduct(context.Background(), "prod-001")
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.Equal(t, 1, gotSummary.TotalReviews)
}
