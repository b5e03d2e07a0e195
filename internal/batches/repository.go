package batches

import (
	"context"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists batches.
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

func (r *Repository) Create(ctx context.Context, batch *models.Batch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// UpdateFields writes only the given columns so concurrent quantity
// decrements are never overwritten by a stale read.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Batch{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Batch{}).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindByIDForUpdate loads the batch holding a row lock until the transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindByIDs loads the batches keyed by id; missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Batch, error) {
	out := make(map[uuid.UUID]models.Batch, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Batch
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ListByProduct returns the product's batches in FEFO order.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Batch, error) {
	var rows []models.Batch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiration_date ASC").
		Order("received_date ASC").
		Order("batch_code ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListByProducts groups the batches of several products.
func (r *Repository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.Batch, error) {
	out := make(map[uuid.UUID][]models.Batch, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []models.Batch
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("expiration_date ASC").
		Order("received_date ASC").
		Order("batch_code ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row)
	}
	return out, nil
}

// ListAll returns every batch, used by the reporting read paths.
func (r *Repository) ListAll(ctx context.Context) ([]models.Batch, error) {
	var rows []models.Batch
	err := r.db.WithContext(ctx).
		Order("expiration_date ASC").
		Order("batch_code ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Batch{}).Where("batch_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsReferenced reports whether any order item points at the batch.
func (r *Repository) IsReferenced(ctx context.Context, batchID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("batch_id = ?", batchID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AnyReferencedForProduct reports whether any of the product's batches has order items.
func (r *Repository) AnyReferencedForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN batches ON batches.id = order_items.batch_id").
		Where("batches.product_id = ?", productID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DecrementIfAvailable subtracts amount only while enough stock remains and
// reports whether a row was changed.
func (r *Repository) DecrementIfAvailable(ctx context.Context, batchID uuid.UUID, amount int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Batch{}).
		Where("id = ? AND quantity >= ?", batchID, amount).
		Update("quantity", gorm.Expr("quantity - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
