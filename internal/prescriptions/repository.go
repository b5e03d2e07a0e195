package prescriptions

import (
	"context"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row is a prescription joined with the owning order.
type Row struct {
	models.Prescription
	CustomerID  uuid.UUID         `gorm:"column:customer_id"`
	OrderStatus enums.OrderStatus `gorm:"column:order_status"`
}

// Repository reads and reviews order prescriptions.
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

func (r *Repository) Create(ctx context.Context, p *models.Prescription) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Row, error) {
	var row Row
	err := r.joined(ctx).Where("prescriptions.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByOrder returns the prescription attached to orderID.
func (r *Repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.db.WithContext(ctx).First(&p, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByStatus returns prescriptions with status, oldest first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.PrescriptionStatus) ([]Row, error) {
	var rows []Row
	err := r.joined(ctx).
		Where("prescriptions.status = ?", status).
		Order("prescriptions.created_at ASC").
		Order("prescriptions.id ASC").
		Find(&rows).Error
	return rows, err
}

// ListByCustomer returns every prescription uploaded with customerID's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Row, error) {
	var rows []Row
	err := r.joined(ctx).
		Where("orders.customer_id = ?", customerID).
		Order("prescriptions.created_at DESC").
		Order("prescriptions.id DESC").
		Find(&rows).Error
	return rows, err
}

// Review moves a prescription out of pending. It reports false when the row
// was no longer pending.
func (r *Repository) Review(ctx context.Context, id uuid.UUID, status enums.PrescriptionStatus, notes *string, verifier uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Prescription{}).
		Where("id = ? AND status = ?", id, enums.PrescriptionStatusPending).
		Updates(map[string]any{
			"status":             status,
			"verification_notes": notes,
			"verified_at":        at,
			"verified_by":        verifier,
			"updated_at":         at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("prescriptions").
		Select("prescriptions.*, orders.customer_id AS customer_id, orders.status AS order_status").
		Joins("JOIN orders ON orders.id = prescriptions.order_id")
}
