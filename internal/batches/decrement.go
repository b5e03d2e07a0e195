package batches

import (
	"context"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Decrement removes amount from the batch with a compare-and-swap so that
// concurrent callers can never drive quantity below zero. On shortfall the
// quantity is left untouched and INSUFFICIENT_STOCK is returned. Active flags
// are never changed here.
func Decrement(ctx context.Context, tx *gorm.DB, batchID uuid.UUID, amount int) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "decrement amount must be positive").
			WithDetails(map[string][]string{fieldQuantity: {"Quantity must be greater than zero."}})
	}

	repo := NewRepository(tx)
	ok, err := repo.DecrementIfAvailable(ctx, batchID, amount)
	if err != nil {
		if db.IsCheckViolation(err) {
			return insufficientStock(batchID, amount, -1)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement batch")
	}
	if ok {
		return nil
	}

	batch, err := repo.FindByID(ctx, batchID)
	if err != nil {
		if db.IsNotFound(err) {
			return batchNotFound(batchID)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load batch")
	}
	return insufficientStock(batchID, amount, batch.Quantity)
}

func insufficientStock(batchID uuid.UUID, requested, available int) error {
	details := map[string]any{
		"batch_id":  batchID.String(),
		"requested": requested,
	}
	if available >= 0 {
		details["available"] = available
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for batch").WithDetails(details)
}

func batchNotFound(batchID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "batch not found").
		WithDetails(map[string]any{"batch_id": batchID.String()})
}
