package product

import (
	"context"
	"strings"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists catalog products.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save writes every column of the product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Batches").Save(product).Error
}

// Delete removes the product; batches go with it through the cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// DeleteBatches removes the product's batches explicitly for stores that do
// not enforce the cascade.
func (r *Repository) DeleteBatches(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.Batch{}).Error
}

// ActiveColumnTaken reports whether another active product already uses value
// (case-insensitive) in column. excludeID skips the product being updated.
func (r *Repository) ActiveColumnTaken(ctx context.Context, column, value string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Where("LOWER("+column+") = ?", strings.ToLower(strings.TrimSpace(value)))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListQuery filters the catalog listing.
type ListQuery struct {
	Category        *enums.ProductCategory
	Search          string
	IncludeInactive bool
	Pagination      pagination.Params
}

// List returns one keyset page of products, newest first.
func (r *Repository) List(ctx context.Context, query ListQuery) (pagination.Page[models.Product], error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if query.Category != nil {
		qb = qb.Where("category = ?", *query.Category)
	}
	if !query.IncludeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ?)", pattern, pattern)
	}

	qb, err := pagination.Keyset(qb, "", query.Pagination)
	if err != nil {
		return pagination.Page[models.Product]{}, err
	}

	var rows []models.Product
	if err := qb.Find(&rows).Error; err != nil {
		return pagination.Page[models.Product]{}, err
	}
	return pagination.Cut(rows, query.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	}), nil
}

// ListAll returns every product ordered by name, for reports.
func (r *Repository) ListAll(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Order("name ASC").Order("brand ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Product
	err := q.Find(&rows).Error
	return rows, err
}
