package prescriptions

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var reviewTime = time.Date(2025, 2, 3, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, func() time.Time { return reviewTime })
	require.NoError(t, err)
	return svc, conn
}

func seedCustomer(t *testing.T, conn *gorm.DB) models.User {
	t.Helper()
	u := models.User{Email: uuid.NewString() + "@example.com", FirstName: "Ana", LastName: "Cruz", Role: enums.UserRoleCustomer}
	require.NoError(t, conn.Create(&u).Error)
	return u
}

func seedPrescription(t *testing.T, conn *gorm.DB, customerID uuid.UUID, createdAt time.Time) models.Prescription {
	t.Helper()
	order := models.Order{
		CustomerID:    customerID,
		PickupAt:      createdAt.Add(24 * time.Hour),
		PaymentMethod: enums.PaymentMethodCash,
		TotalAmount:   decimal.Zero,
		CreatedAt:     createdAt,
	}
	require.NoError(t, conn.Create(&order).Error)
	p := models.Prescription{OrderID: order.ID, FileURL: "rx/" + order.ID.String() + ".jpg", CreatedAt: createdAt}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func TestNewServiceValidatesDeps(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.Error(t, err)
}

func TestVerifyApprovesPending(t *testing.T) {
	svc, conn := newTestService(t)
	customer := seedCustomer(t, conn)
	rx := seedPrescription(t, conn, customer.ID, reviewTime.Add(-time.Hour))
	verifier := uuid.New()
	notes := "  dosage confirmed "

	out, err := svc.Verify(context.Background(), rx.ID, verifier, VerifyInput{Status: enums.PrescriptionStatusApproved, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.PrescriptionStatusApproved, out.Status)
	require.NotNil(t, out.VerificationNotes)
	assert.Equal(t, "dosage confirmed", *out.VerificationNotes)
	require.NotNil(t, out.VerifiedBy)
	assert.Equal(t, verifier, *out.VerifiedBy)
	require.NotNil(t, out.VerifiedAt)
	assert.True(t, out.VerifiedAt.Equal(reviewTime))
	assert.Equal(t, customer.ID, out.CustomerID)
}

func TestVerifyRejectsNonFinalStatus(t *testing.T) {
	svc, conn := newTestService(t)
	customer := seedCustomer(t, conn)
	rx := seedPrescription(t, conn, customer.ID, reviewTime)

	_, err := svc.Verify(context.Background(), rx.ID, uuid.New(), VerifyInput{Status: enums.PrescriptionStatusPending})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestVerifyOnlyFromPending(t *testing.T) {
	svc, conn := newTestService(t)
	customer := seedCustomer(t, conn)
	rx := seedPrescription(t, conn, customer.ID, reviewTime)
	ctx := context.Background()

	_, err := svc.Verify(ctx, rx.ID, uuid.New(), VerifyInput{Status: enums.PrescriptionStatusRejected})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, rx.ID, uuid.New(), VerifyInput{Status: enums.PrescriptionStatusApproved})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIllegalTransition))
}

func TestVerifyUnknownPrescription(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Verify(context.Background(), uuid.New(), uuid.New(), VerifyInput{Status: enums.PrescriptionStatusApproved})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListPendingOldestFirst(t *testing.T) {
	svc, conn := newTestService(t)
	customer := seedCustomer(t, conn)
	newer := seedPrescription(t, conn, customer.ID, reviewTime.Add(-time.Hour))
	older := seedPrescription(t, conn, customer.ID, reviewTime.Add(-48*time.Hour))
	reviewed := seedPrescription(t, conn, customer.ID, reviewTime.Add(-72*time.Hour))
	_, err := svc.Verify(context.Background(), reviewed.ID, uuid.New(), VerifyInput{Status: enums.PrescriptionStatusApproved})
	require.NoError(t, err)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, older.ID, pending[0].ID)
	assert.Equal(t, newer.ID, pending[1].ID)
}

func TestListForCustomerScopesToOwner(t *testing.T) {
	svc, conn := newTestService(t)
	owner := seedCustomer(t, conn)
	other := seedCustomer(t, conn)
	mine := seedPrescription(t, conn, owner.ID, reviewTime)
	seedPrescription(t, conn, other.ID, reviewTime)

	rows, err := svc.ListForCustomer(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	got, err := svc.Get(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.OrderID, got.OrderID)
	assert.Equal(t, enums.OrderStatusPending, got.OrderStatus)
}
