package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// HasConfirmedPurchase reports whether the user has an order containing the
// product that has reached at least the confirmed state.
func (r *ReviewRepository) HasConfirmedPurchase(ctx context.Context, userID, productID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1
			  AND oi.product_id = $2
			  AND o.status IN ($3, $4, $5)
		)`

	var exists bool
	err := r.pool.QueryRow(ctx, query,
		userID,
		productID,
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check confirmed purchase: %w", err)
	}

	return exists, nil
}

// Create inserts the review and recomputes the product's rating as the mean
// of all its reviews, in a single transaction so concurrent reads never see
// a review without its rating effect.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.Exec(ctx, insertQuery,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.Verified,
		review.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	ratingQuery := `
		UPDATE products
		SET rating = (SELECT avg(rating) FROM reviews WHERE product_id = $1),
		    updated_at = $2
		WHERE id = $1`

	if _, err := tx.Exec(ctx, ratingQuery, review.ProductID, review.CreatedAt); err != nil {
		return fmt.Errorf("recompute product rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListByProduct returns a product's reviews newest first with the reviewer's
// display name, plus the aggregate summary.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, *domain.ReviewSummary, error) {
	query := `
		SELECT rv.id, rv.product_id, rv.user_id, u.name, rv.rating, rv.comment, rv.verified, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id = $1
		ORDER BY rv.created_at DESC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	var total int
	var sum float64

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.UserName,
			&rv.Rating,
			&rv.Comment,
			&rv.Verified,
			&rv.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
		total++
		sum += float64(rv.Rating)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate review rows: %w", err)
	}

	summary := &domain.ReviewSummary{TotalReviews: total}
	if total > 0 {
		summary.AverageRating = sum / float64(total)
	}

	return reviews, summary, nil
}
