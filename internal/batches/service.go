package batches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes staff batch management and the FEFO read paths.
type Service interface {
	Create(ctx context.Context, productID uuid.UUID, input CreateInput) (*BatchDTO, error)
	Update(ctx context.Context, productID, batchID uuid.UUID, input UpdateInput) (*BatchDTO, error)
	Delete(ctx context.Context, productID, batchID uuid.UUID) error
	Get(ctx context.Context, productID, batchID uuid.UUID) (*BatchDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]BatchDTO, error)
	ListActive(ctx context.Context, productID uuid.UUID) ([]BatchDTO, error)
	NextBatch(ctx context.Context, productID uuid.UUID) (*BatchDTO, error)
	Decrement(ctx context.Context, batchID uuid.UUID, amount int) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the batch service.
type ServiceParams struct {
	Repo     *Repository
	Products productLoader
	Tx       txRunner
	Location *time.Location
	Now      func() time.Time
}

type service struct {
	repo     *Repository
	products productLoader
	tx       txRunner
	loc      *time.Location
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("batch repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		tx:       params.Tx,
		loc:      loc,
		now:      now,
	}, nil
}

func (s *service) today() time.Time {
	return CalendarDay(s.now(), s.loc)
}

func (s *service) Create(ctx context.Context, productID uuid.UUID, input CreateInput) (*BatchDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	input.Code = strings.TrimSpace(input.Code)
	errs := ValidateNew(input, today)
	if !errs.Has(fieldCode) {
		exists, err := s.repo.CodeExists(ctx, input.Code)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check batch code")
		}
		if exists {
			errs.Add(fieldCode, MsgDuplicateCode)
		}
	}
	if err := errs.Err("invalid batch"); err != nil {
		return nil, err
	}

	received := today
	if input.ReceivedDate != nil && !input.ReceivedDate.IsZero() {
		received = day(*input.ReceivedDate)
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	batch := &models.Batch{
		ProductID:      product.ID,
		Code:           input.Code,
		Quantity:       input.Quantity,
		ExpirationDate: day(input.ExpirationDate),
		ReceivedDate:   received,
		IsActive:       active,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		if db.IsUniqueViolation(err, "batch_code") {
			dup := pkgerrors.FieldErrors{}
			dup.Add(fieldCode, MsgDuplicateCode)
			return nil, dup.Err("invalid batch")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert batch")
	}

	dto := NewBatchDTO(*batch, product.LowStockThreshold, today)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, productID, batchID uuid.UUID, input UpdateInput) (*BatchDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	var updated models.Batch
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		batch, err := s.lockBatch(ctx, repo, productID, batchID)
		if err != nil {
			return err
		}

		errs := ValidateUpdate(input, batch.Code, today)
		fields := map[string]any{}
		if input.Quantity != nil {
			batch.Quantity = *input.Quantity
			fields["quantity"] = batch.Quantity
		}
		if input.ExpirationDate != nil && !input.ExpirationDate.IsZero() {
			batch.ExpirationDate = day(*input.ExpirationDate)
			fields["expiration_date"] = batch.ExpirationDate
		}
		if input.ReceivedDate != nil {
			batch.ReceivedDate = day(*input.ReceivedDate)
			fields["received_date"] = batch.ReceivedDate
		}
		if input.IsActive != nil {
			batch.IsActive = *input.IsActive
			fields["is_active"] = batch.IsActive
		}
		if !errs.Has(fieldReceivedDate) && day(batch.ReceivedDate).After(day(batch.ExpirationDate)) {
			errs.Add(fieldReceivedDate, MsgReceivedAfterExpy)
		}
		if err := errs.Err("invalid batch"); err != nil {
			return err
		}

		if err := repo.UpdateFields(ctx, batch.ID, fields); err != nil {
			if db.IsCheckViolation(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid batch").
					WithDetails(map[string][]string{fieldQuantity: {MsgNegativeQuantity}})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update batch")
		}
		batch, err = repo.FindByID(ctx, batch.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload batch")
		}
		updated = *batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := NewBatchDTO(updated, product.LowStockThreshold, today)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, productID, batchID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.loadBatch(ctx, repo, productID, batchID); err != nil {
			return err
		}

		referenced, err := repo.IsReferenced(ctx, batchID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check batch references")
		}
		if referenced {
			return protectedBatch(batchID)
		}

		if err := repo.Delete(ctx, batchID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return protectedBatch(batchID)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete batch")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, productID, batchID uuid.UUID) (*BatchDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	batch, err := s.loadBatch(ctx, s.repo, productID, batchID)
	if err != nil {
		return nil, err
	}
	dto := NewBatchDTO(*batch, product.LowStockThreshold, s.today())
	return &dto, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]BatchDTO, error) {
	product, rows, err := s.productBatches(ctx, productID)
	if err != nil {
		return nil, err
	}
	SortFEFO(rows)
	return NewBatchDTOs(rows, product.LowStockThreshold, s.today()), nil
}

func (s *service) ListActive(ctx context.Context, productID uuid.UUID) ([]BatchDTO, error) {
	product, rows, err := s.productBatches(ctx, productID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	return NewBatchDTOs(Allocatable(rows, today), product.LowStockThreshold, today), nil
}

func (s *service) NextBatch(ctx context.Context, productID uuid.UUID) (*BatchDTO, error) {
	product, rows, err := s.productBatches(ctx, productID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	next, ok := SelectFEFO(rows, today)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no allocatable batch").
			WithDetails(map[string]any{"product_id": productID.String()})
	}
	dto := NewBatchDTO(next, product.LowStockThreshold, today)
	return &dto, nil
}

func (s *service) Decrement(ctx context.Context, batchID uuid.UUID, amount int) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return Decrement(ctx, tx, batchID, amount)
	})
}

func (s *service) productBatches(ctx context.Context, productID uuid.UUID) (*models.Product, []models.Batch, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list batches")
	}
	return product, rows, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) loadBatch(ctx context.Context, repo *Repository, productID, batchID uuid.UUID) (*models.Batch, error) {
	batch, err := repo.FindByID(ctx, batchID)
	return ownedBatch(batch, err, productID, batchID)
}

// lockBatch is loadBatch under a row lock so staff edits serialize with
// order decrements on the same batch.
func (s *service) lockBatch(ctx context.Context, repo *Repository, productID, batchID uuid.UUID) (*models.Batch, error) {
	batch, err := repo.FindByIDForUpdate(ctx, batchID)
	return ownedBatch(batch, err, productID, batchID)
}

func ownedBatch(batch *models.Batch, err error, productID, batchID uuid.UUID) (*models.Batch, error) {
	if err != nil {
		if db.IsNotFound(err) {
			return nil, batchNotFound(batchID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load batch")
	}
	if batch.ProductID != productID {
		return nil, batchNotFound(batchID)
	}
	return batch, nil
}

func protectedBatch(batchID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "batch is referenced by order items").
		WithDetails(map[string]any{"batch_id": batchID.String()})
}
