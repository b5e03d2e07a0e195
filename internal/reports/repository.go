package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs the read-only queries behind the dashboard and reports.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountOrders(ctx context.Context, status enums.OrderStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

// SumTotals adds up total_amount over every order in status.
func (r *Repository) SumTotals(ctx context.Context, status enums.OrderStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("status = ?", status).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// RecentOrders returns the newest orders with their items.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// OrdersBetween returns orders in status created in [start, end).
func (r *Repository) OrdersBetween(ctx context.Context, status enums.OrderStatus, start, end time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND created_at >= ? AND created_at < ?", status, start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// PrescriptionsBetween returns prescriptions uploaded in [start, end).
func (r *Repository) PrescriptionsBetween(ctx context.Context, start, end time.Time) ([]models.Prescription, error) {
	var rows []models.Prescription
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
