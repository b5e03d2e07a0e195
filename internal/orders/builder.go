package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultOpenHour  = 9
	defaultCloseHour = 17
)

// LineItemInput requests quantity units from one batch.
type LineItemInput struct {
	BatchID  uuid.UUID
	Quantity int
}

// BuildOrderInput is a customer's checkout request.
type BuildOrderInput struct {
	Items            []LineItemInput
	PickupAt         time.Time
	PaymentMethod    enums.PaymentMethod
	PrescriptionFile *string
	PaymentProof     *string
	Notes            *string
}

// BuildOrder validates the request and, in a single transaction, creates the
// order with its items, decrements every batch and attaches the prescription.
// Readers see either the complete order with all decrements or nothing.
func (s *service) BuildOrder(ctx context.Context, customerID uuid.UUID, input BuildOrderInput) (out *OrderDTO, err error) {
	started := time.Now()
	units := 0
	defer func() {
		s.observeBuild(err, units, time.Since(started))
	}()

	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "order has no items")
	}
	if err := s.checkPickup(input.PickupAt); err != nil {
		return nil, err
	}
	if !input.PaymentMethod.IsValid() {
		errs := pkgerrors.FieldErrors{}
		errs.Add("payment_method", "Payment method must be cash or online.")
		return nil, errs.Err("invalid payment method")
	}

	resolved, err := s.resolveBatches(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
				WithDetails(map[string]any{"customer_id": customerID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}

	rxProducts, err := s.prescriptionProducts(ctx, resolved)
	if err != nil {
		return nil, err
	}
	rxFile := cleanRef(input.PrescriptionFile)
	if len(rxProducts) > 0 && rxFile == nil {
		ids := make([]string, 0, len(rxProducts))
		for _, id := range rxProducts {
			ids = append(ids, id.String())
		}
		return nil, pkgerrors.New(pkgerrors.CodePrescriptionRequired, "prescription required for one or more products").
			WithDetails(map[string]any{"product_ids": ids})
	}
	proof := cleanRef(input.PaymentProof)
	if input.PaymentMethod == enums.PaymentMethodOnline && proof == nil {
		return nil, pkgerrors.New(pkgerrors.CodePaymentProofRequired, "payment proof required for online payment")
	}

	today := batches.CalendarDay(s.now(), s.loc)
	var (
		orderID   uuid.UUID
		allocated int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batchRepo := s.batches.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order, err := repo.CreateOrder(ctx, &models.Order{
			CustomerID:      customerID,
			Status:          enums.OrderStatusPending,
			PickupAt:        input.PickupAt.UTC(),
			PaymentMethod:   input.PaymentMethod,
			DeliveryMethod:  enums.DeliveryMethodPickup,
			PaymentProofURL: proof,
			Notes:           cleanRef(input.Notes),
			TotalAmount:     decimal.Zero,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order")
		}

		total := decimal.Zero
		allocated = 0
		for i, line := range input.Items {
			batch, err := batchRepo.FindByID(ctx, line.BatchID)
			if err != nil {
				if db.IsNotFound(err) {
					return batchNotFound(line.BatchID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load batch")
			}
			if err := checkLine(i, line, *batch, today); err != nil {
				return err
			}

			p, err := productRepo.FindByID(ctx, batch.ProductID)
			if err != nil {
				if db.IsNotFound(err) {
					return productNotFound(batch.ProductID)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}
			subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			item := &models.OrderItem{
				OrderID:   order.ID,
				BatchID:   batch.ID,
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
				Subtotal:  subtotal,
			}
			if err := repo.CreateOrderItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order item")
			}
			if err := batches.Decrement(ctx, tx, batch.ID, line.Quantity); err != nil {
				return err
			}
			total = total.Add(subtotal)
			allocated += line.Quantity
		}

		if len(rxProducts) > 0 && rxFile != nil {
			if err := repo.CreatePrescription(ctx, &models.Prescription{
				OrderID: order.ID,
				FileURL: *rxFile,
				Status:  enums.PrescriptionStatusPending,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create prescription")
			}
		}

		if err := repo.UpdateTotal(ctx, order.ID, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order total")
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	units = allocated

	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order created")
	return s.get(ctx, orderID)
}

// checkPickup requires a future pickup whose local hour is in [open, close).
func (s *service) checkPickup(pickup time.Time) error {
	if pickup.IsZero() {
		return pkgerrors.New(pkgerrors.CodeInvalidPickupWindow, "pickup time required")
	}
	if pickup.Before(s.now()) {
		return pkgerrors.New(pkgerrors.CodeInvalidPickupWindow, "pickup time is in the past").
			WithDetails(map[string]any{"pickup_at": pickup.UTC().Format(time.RFC3339)})
	}
	hour := pickup.In(s.loc).Hour()
	if hour < s.openHour || hour >= s.closeHour {
		return pkgerrors.New(pkgerrors.CodeInvalidPickupWindow, "pickup time is outside pharmacy hours").
			WithDetails(map[string]any{
				"pickup_at":  pickup.In(s.loc).Format(time.RFC3339),
				"open_hour":  s.openHour,
				"close_hour": s.closeHour,
			})
	}
	return nil
}

func (s *service) resolveBatches(ctx context.Context, items []LineItemInput) ([]models.Batch, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BatchID)
	}
	found, err := s.batches.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load batches")
	}
	out := make([]models.Batch, 0, len(items))
	for _, item := range items {
		batch, ok := found[item.BatchID]
		if !ok {
			return nil, batchNotFound(item.BatchID)
		}
		out = append(out, batch)
	}
	return out, nil
}

// prescriptionProducts returns the distinct products among rows that require
// a prescription, in first-seen order.
func (s *service) prescriptionProducts(ctx context.Context, rows []models.Batch) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products")
	}
	seen := map[uuid.UUID]struct{}{}
	out := []uuid.UUID{}
	for _, b := range rows {
		p, ok := products[b.ProductID]
		if !ok {
			return nil, productNotFound(b.ProductID)
		}
		if !p.RequiresPrescription {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p.ID)
	}
	return out, nil
}

// checkLine validates one requested line against the batch as currently
// stored in the transaction. A batch on its expiration day is rejected as
// EXPIRED_BATCH even though batches.IsExpired still reports it unexpired.
func checkLine(index int, line LineItemInput, batch models.Batch, today time.Time) error {
	if !batch.IsActive {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "batch is not active").
			WithDetails(map[string]any{"batch_id": batch.ID.String(), "requested": line.Quantity, "available": 0})
	}
	if line.Quantity > batch.Quantity {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for batch").
			WithDetails(map[string]any{
				"batch_id":  batch.ID.String(),
				"requested": line.Quantity,
				"available": batch.Quantity,
			})
	}
	if !batches.CalendarDay(batch.ExpirationDate, time.UTC).After(today) {
		return pkgerrors.New(pkgerrors.CodeExpiredBatch, "batch expired").
			WithDetails(map[string]any{
				"batch_id":        batch.ID.String(),
				"expiration_date": batch.ExpirationDate.Format("2006-01-02"),
			})
	}
	if line.Quantity <= 0 {
		field := fmt.Sprintf("items[%d].quantity", index)
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid line item").
			WithDetails(map[string][]string{field: {"Quantity must be greater than zero."}})
	}
	return nil
}

func (s *service) observeBuild(err error, units int, elapsed time.Duration) {
	if err == nil {
		s.metrics.ObserveBuild(metrics.OutcomeSuccess, "", elapsed)
		s.metrics.AddUnits(units)
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	outcome := metrics.OutcomeRejected
	if code == pkgerrors.CodeDependency || code == pkgerrors.CodeInternal {
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveBuild(outcome, string(code), elapsed)
}

func batchNotFound(batchID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "batch not found").
		WithDetails(map[string]any{"batch_id": batchID.String()})
}

func productNotFound(productID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
		WithDetails(map[string]any{"product_id": productID.String()})
}

func cleanRef(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
