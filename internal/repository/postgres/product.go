package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const productColumns = `id, name, description, category, mrp, our_price, discount, after_exchange_price, rating, in_stock, stock_quantity, images, faqs, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	imagesJSON, faqsJSON, err := marshalProductJSON(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Category,
		p.MRP,
		p.OurPrice,
		p.Discount,
		p.AfterExchangePrice,
		p.Rating,
		p.InStock,
		p.StockQuantity,
		imagesJSON,
		faqsJSON,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1`

	p, err := scanProductRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, totalCount int, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", "SELECT FROM products")
	defer func() { end(err) }()

	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.InStock != nil {
		conditions = append(conditions, fmt.Sprintf("in_stock = $%d", argIndex))
		args = append(args, *filter.InStock)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT `+productColumns+`,
			   count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p          domain.Product
			imagesJSON []byte
			faqsJSON   []byte
		)

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.MRP,
			&p.OurPrice,
			&p.Discount,
			&p.AfterExchangePrice,
			&p.Rating,
			&p.InStock,
			&p.StockQuantity,
			&imagesJSON,
			&faqsJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		if err := unmarshalProductJSON(&p, imagesJSON, faqsJSON); err != nil {
			return nil, 0, err
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// Update applies a partial update inside a transaction: the current row is
// read, the supplied fields are overlaid, derived prices are recomputed when
// a price field changed, and the full row is written back.
func (r *ProductRepository) Update(ctx context.Context, id string, update repository.ProductUpdate) (*domain.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	selectQuery := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
		FOR UPDATE`

	p, err := scanProductRow(tx.QueryRow(ctx, selectQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	applyProductUpdate(p, update)
	p.UpdatedAt = time.Now().UTC()

	imagesJSON, faqsJSON, err := marshalProductJSON(p)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE products
		SET name = $1, description = $2, category = $3, mrp = $4, our_price = $5,
		    discount = $6, after_exchange_price = $7, in_stock = $8,
		    stock_quantity = $9, images = $10, faqs = $11, updated_at = $12
		WHERE id = $13`

	if _, err := tx.Exec(ctx, updateQuery,
		p.Name,
		p.Description,
		p.Category,
		p.MRP,
		p.OurPrice,
		p.Discount,
		p.AfterExchangePrice,
		p.InStock,
		p.StockQuantity,
		imagesJSON,
		faqsJSON,
		p.UpdatedAt,
		p.ID,
	); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return p, nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// Suggest returns lightweight matches for a search query. Only in-stock
// products are considered, and rows whose name starts with the query rank
// before plain substring matches.
func (r *ProductRepository) Suggest(ctx context.Context, query string, limit int) (suggestions []domain.Suggestion, err error) {
	ctx, end := database.TraceQuery(ctx, "SuggestProducts", "SELECT FROM products")
	defer func() { end(err) }()

	sql := `
		SELECT id, name, COALESCE(images->>0, ''), category, our_price
		FROM products
		WHERE in_stock = true
		  AND (name ILIKE $1 OR description ILIKE $1)
		ORDER BY (name ILIKE $2) DESC, name ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, sql, "%"+query+"%", query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("suggest products: %w", err)
	}
	defer rows.Close()

	suggestions = []domain.Suggestion{}
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &s.Category, &s.OurPrice); err != nil {
			return nil, fmt.Errorf("scan suggestion row: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestion rows: %w", err)
	}

	return suggestions, nil
}

func applyProductUpdate(p *domain.Product, u repository.ProductUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.MRP != nil {
		p.MRP = *u.MRP
	}
	if u.OurPrice != nil {
		p.OurPrice = *u.OurPrice
	}
	if u.Discount != nil {
		p.Discount = *u.Discount
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
	if u.StockQuantity != nil {
		p.StockQuantity = *u.StockQuantity
	}
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.FAQs != nil {
		p.FAQs = u.FAQs
	}

	if u.TouchesPrice() {
		if u.Discount == nil {
			p.Discount = domain.ComputeDiscount(p.MRP, p.OurPrice)
		}
		p.AfterExchangePrice = domain.ComputeAfterExchangePrice(p.OurPrice)
	}
}

func marshalProductJSON(p *domain.Product) (imagesJSON, faqsJSON []byte, err error) {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err = json.Marshal(images)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal images: %w", err)
	}

	faqs := p.FAQs
	if faqs == nil {
		faqs = []domain.FAQ{}
	}
	faqsJSON, err = json.Marshal(faqs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal faqs: %w", err)
	}

	return imagesJSON, faqsJSON, nil
}

func unmarshalProductJSON(p *domain.Product, imagesJSON, faqsJSON []byte) error {
	if imagesJSON != nil {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if faqsJSON != nil {
		if err := json.Unmarshal(faqsJSON, &p.FAQs); err != nil {
			return fmt.Errorf("unmarshal faqs: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProductRow(row rowScanner) (*domain.Product, error) {
	var (
		p          domain.Product
		imagesJSON []byte
		faqsJSON   []byte
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.MRP,
		&p.OurPrice,
		&p.Discount,
		&p.AfterExchangePrice,
		&p.Rating,
		&p.InStock,
		&p.StockQuantity,
		&imagesJSON,
		&faqsJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := unmarshalProductJSON(&p, imagesJSON, faqsJSON); err != nil {
		return nil, err
	}

	return &p, nil
}
