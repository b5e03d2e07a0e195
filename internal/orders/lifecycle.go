package orders

import (
	"context"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
}

// CanTransition reports whether an order in from may move to to. Re-applying
// the current status is always accepted as a no-op.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SetStatus moves the order through its lifecycle. Stock is never touched
// here; quantities were decremented when the order was built.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		errs := pkgerrors.FieldErrors{}
		errs.Add("status", "Status must be one of pending, processing, completed or cancelled.")
		return nil, errs.Err("invalid order status")
	}

	var from enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return orderNotFound(orderID)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		from = order.Status
		if from == status {
			return nil
		}
		if !CanTransition(from, status) {
			return illegalTransition(orderID, from, status)
		}
		ok, err := repo.UpdateStatusIf(ctx, orderID, from, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently").
				WithDetails(map[string]any{"order_id": orderID.String(), "expected": from})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if from != status {
		s.metrics.IncTransition(string(from), string(status))
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"from":     from,
			"to":       status,
		}), "order status updated")
	}
	return s.get(ctx, orderID)
}

func illegalTransition(orderID uuid.UUID, from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeIllegalTransition, "order status transition not allowed").
		WithDetails(map[string]any{
			"order_id": orderID.String(),
			"from":     from,
			"to":       to,
		})
}
