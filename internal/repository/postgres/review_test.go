package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

func newReviewRepo(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewReviewRepository(mock), mock
}

// --- HasConfirmedPurchase Tests ---

func TestReviewRepository_HasConfirmedPurchase_True(t *testing.T) {
	repo, mock := newReviewRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-001", "prod-001",
			domain.OrderStatusConfirmed, domain.OrderStatusShipped, domain.OrderStatusDelivered).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasConfirmedPurchase(context.Background(), "user-001", "prod-001")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_HasConfirmedPurchase_False(t *testing.T) {
	repo, mock := newReviewRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-001", "prod-999",
			domain.OrderStatusConfirmed, domain.OrderStatusShipped, domain.OrderStatusDelivered).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasConfirmedPurchase(context.Background(), "user-001", "prod-999")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Create Tests ---

func TestReviewRepository_Create_InsertsAndRecomputesRating(t *testing.T) {
	repo, mock := newReviewRepo(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	rv := &domain.Review{
		ID:        "rev-001",
		ProductID: "prod-001",
		UserID:    "user-001",
		Rating:    5,
		Comment:   "Great product",
		Verified:  true,
		CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment, rv.Verified, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(rv.ProductID, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), rv)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- ListByProduct Tests ---

func TestReviewRepository_ListByProduct_WithSummary(t *testing.T) {
	repo, mock := newReviewRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "verified", "created_at"}).
		AddRow("rev-002", "prod-001", "user-002", "Ravi", 4, "Good", true, now).
		AddRow("rev-001", "prod-001", "user-001", "Asha", 5, "Great", true, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WithArgs("prod-001").
		WillReturnRows(rows)

	reviews, summary, err := repo.ListByProduct(context.Background(), "prod-001")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Ravi", reviews[0].UserName)
	assert.Equal(t, 2, summary.TotalReviews)
	assert.InDelta(t, 4.5, summary.AverageRating, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByProduct_Empty(t *testing.T) {
	repo, mock := newReviewRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WithArgs("prod-999").
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "verified", "created_at"}))

	reviews, summary, err := repo.ListByProduct(context.Background(), "prod-999")
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Equal(t, 0, summary.TotalReviews)
	assert.Equal(t, 0.0, summary.AverageRating)

	assert.NoError(t, mock.ExpectationsWereMet())
}
