package prescriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service handles pharmacist review of uploaded prescriptions.
type Service interface {
	Verify(ctx context.Context, prescriptionID, verifierID uuid.UUID, input VerifyInput) (*QueueItemDTO, error)
	ListPending(ctx context.Context) ([]QueueItemDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]QueueItemDTO, error)
	Get(ctx context.Context, prescriptionID uuid.UUID) (*QueueItemDTO, error)
}

// VerifyInput is the reviewer's decision.
type VerifyInput struct {
	Status enums.PrescriptionStatus
	Notes  *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	now  func() time.Time
}

func NewService(repo *Repository, tx txRunner, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("prescriptions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, now: now}, nil
}

func (s *service) Verify(ctx context.Context, prescriptionID, verifierID uuid.UUID, input VerifyInput) (*QueueItemDTO, error) {
	if input.Status != enums.PrescriptionStatusApproved && input.Status != enums.PrescriptionStatusRejected {
		errs := pkgerrors.FieldErrors{}
		errs.Add("status", "Status must be approved or rejected.")
		return nil, errs.Err("invalid prescription review")
	}
	if verifierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "verifier required")
	}
	notes := trimNotes(input.Notes)

	var out *QueueItemDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := s.load(ctx, repo, prescriptionID)
		if err != nil {
			return err
		}
		if row.Status != enums.PrescriptionStatusPending {
			return illegalReview(row.Status, input.Status)
		}
		ok, err := repo.Review(ctx, prescriptionID, input.Status, notes, verifierID, s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: review prescription")
		}
		if !ok {
			return illegalReview(row.Status, input.Status)
		}
		updated, err := s.load(ctx, repo, prescriptionID)
		if err != nil {
			return err
		}
		dto := newQueueItemDTO(*updated)
		out = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListPending(ctx context.Context) ([]QueueItemDTO, error) {
	rows, err := s.repo.ListByStatus(ctx, enums.PrescriptionStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pending prescriptions")
	}
	return newQueueItemDTOs(rows), nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]QueueItemDTO, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customer prescriptions")
	}
	return newQueueItemDTOs(rows), nil
}

func (s *service) Get(ctx context.Context, prescriptionID uuid.UUID) (*QueueItemDTO, error) {
	row, err := s.load(ctx, s.repo, prescriptionID)
	if err != nil {
		return nil, err
	}
	dto := newQueueItemDTO(*row)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*Row, error) {
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found").
				WithDetails(map[string]any{"prescription_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load prescription")
	}
	return row, nil
}

func illegalReview(from, to enums.PrescriptionStatus) error {
	return pkgerrors.New(pkgerrors.CodeIllegalTransition, "prescription already reviewed").
		WithDetails(map[string]any{"from": from, "to": to})
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
