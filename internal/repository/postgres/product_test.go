package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func newProductRepo(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewProductRepository(mock), mock
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:                 "prod-001",
		Name:               "Wireless Earbuds",
		Description:        "Noise cancelling earbuds",
		Category:           domain.CategoryElectronics,
		MRP:                1000,
		OurPrice:           750,
		Discount:           25,
		AfterExchangePrice: 712.5,
		Rating:             0,
		InStock:            true,
		StockQuantity:      10,
		Images:             []string{"earbuds.jpg"},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func productRows(p *domain.Product) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "description", "category", "mrp", "our_price", "discount",
		"after_exchange_price", "rating", "in_stock", "stock_quantity",
		"images", "faqs", "created_at", "updated_at",
	}).AddRow(
		p.ID, p.Name, p.Description, p.Category, p.MRP, p.OurPrice, p.Discount,
		p.AfterExchangePrice, p.Rating, p.InStock, p.StockQuantity,
		[]byte(`["earbuds.jpg"]`), []byte(`[]`), p.CreatedAt, p.UpdatedAt,
	)
}

// --- Create Tests ---

func TestProductRepository_Create_Success(t *testing.T) {
	repo, mock := newProductRepo(t)

	p := sampleProduct()

	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Description, p.Category, p.MRP, p.OurPrice,
			p.Discount, p.AfterExchangePrice, p.Rating, p.InStock, p.StockQuantity,
			pgxmock.AnyArg(), pgxmock.AnyArg(), // images, faqs JSON
			p.CreatedAt, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID Tests ---

func TestProductRepository_GetByID_Success(t *testing.T) {
	repo, mock := newProductRepo(t)

	p := sampleProduct()
	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs(p.ID).
		WillReturnRows(productRows(p))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, []string{"earbuds.jpg"}, got.Images)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Update Tests ---

func TestProductRepository_Update_RecomputesDerivedPrices(t *testing.T) {
	repo, mock := newProductRepo(t)

	p := sampleProduct()
	newPrice := 500.0

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs(p.ID).
		WillReturnRows(productRows(p))
	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.Name, p.Description, p.Category, p.MRP, newPrice,
			50.0,  // recomputed discount: (1000-500)/1000*100
			475.0, // recomputed after-exchange: 500*0.95
			p.InStock, p.StockQuantity,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			p.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), p.ID, repository.ProductUpdate{OurPrice: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Discount)
	assert.Equal(t, 475.0, got.AfterExchangePrice)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	name := "New Name"
	_, err := repo.Update(context.Background(), "missing", repository.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Delete Tests ---

func TestProductRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectExec("DELETE FROM products").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Suggest Tests ---

func TestProductRepository_Suggest_RanksAndProjects(t *testing.T) {
	repo, mock := newProductRepo(t)

	rows := pgxmock.NewRows([]string{"id", "name", "image", "category", "our_price"}).
		AddRow("prod-001", "Earbuds Pro", "earbuds.jpg", domain.CategoryElectronics, 750.0).
		AddRow("prod-002", "Wireless Earbuds", "wireless.jpg", domain.CategoryElectronics, 500.0)

	mock.ExpectQuery("SELECT id, name, (.+) FROM products").
		WithArgs("%ear%", "ear%", 10).
		WillReturnRows(rows)

	got, err := repo.Suggest(context.Background(), "ear", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Earbuds Pro", got[0].Name)
	assert.Equal(t, "earbuds.jpg", got[0].Image)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Suggest_Empty(t *testing.T) {
	repo, mock := newProductRepo(t)

	mock.ExpectQuery("SELECT id, name, (.+) FROM products").
		WithArgs("%zzz%", "zzz%", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "image", "category", "our_price"}))

	got, err := repo.Suggest(context.Background(), "zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- ApplyProductUpdate Tests ---

func TestApplyProductUpdate_KeepsSuppliedDiscount(t *testing.T) {
	p := sampleProduct()
	discount := 10.0
	applyProductUpdate(p, repository.ProductUpdate{Discount: &discount})
	assert.Equal(t, 10.0, p.Discount)
	assert.Equal(t, 712.5, p.AfterExchangePrice)
}

func TestApplyProductUpdate_NonPriceFieldLeavesDerived(t *testing.T) {
	p := sampleProduct()
	name := "Renamed"
	applyProductUpdate(p, repository.ProductUpdate{Name: &name})
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, 25.0, p.Discount)
	assert.Equal(t, 712.5, p.AfterExchangePrice)
}
