package batches

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
)

const (
	fieldCode           = "batch_code"
	fieldQuantity       = "quantity"
	fieldExpirationDate = "expiration_date"
	fieldReceivedDate   = "received_date"

	MsgRequired          = "This field is required."
	MsgInvalidBatchCode  = "Batch code must contain only numbers."
	MsgDuplicateCode     = "A batch with this code already exists."
	MsgImmutableCode     = "Batch code cannot be changed."
	MsgNegativeQuantity  = "Quantity cannot be negative."
	MsgExpirationInPast  = "Expiration date cannot be in the past."
	MsgReceivedInFuture  = "Received date cannot be in the future."
	MsgReceivedAfterExpy = "Received date cannot be after the expiration date."
)

// CreateInput is a new batch as submitted by staff. Dates are calendar days.
type CreateInput struct {
	Code           string
	Quantity       int
	ExpirationDate time.Time
	ReceivedDate   *time.Time
	IsActive       *bool
}

// UpdateInput carries the mutable batch fields. Code is accepted only so a
// change attempt can be reported.
type UpdateInput struct {
	Code           *string
	Quantity       *int
	ExpirationDate *time.Time
	ReceivedDate   *time.Time
	IsActive       *bool
}

// ValidCode reports whether code is non-empty and made only of ASCII digits.
func ValidCode(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateNew collects every violation in input relative to today.
func ValidateNew(input CreateInput, today time.Time) pkgerrors.FieldErrors {
	errs := pkgerrors.FieldErrors{}
	today = day(today)

	code := strings.TrimSpace(input.Code)
	switch {
	case code == "":
		errs.Add(fieldCode, MsgRequired)
	case !ValidCode(code):
		errs.Add(fieldCode, MsgInvalidBatchCode)
	}

	if input.Quantity < 0 {
		errs.Add(fieldQuantity, MsgNegativeQuantity)
	}

	if input.ExpirationDate.IsZero() {
		errs.Add(fieldExpirationDate, MsgRequired)
	} else if day(input.ExpirationDate).Before(today) {
		errs.Add(fieldExpirationDate, MsgExpirationInPast)
	}

	received := today
	if input.ReceivedDate != nil && !input.ReceivedDate.IsZero() {
		received = day(*input.ReceivedDate)
		if received.After(today) {
			errs.Add(fieldReceivedDate, MsgReceivedInFuture)
		}
	}
	if !input.ExpirationDate.IsZero() && received.After(day(input.ExpirationDate)) {
		errs.Add(fieldReceivedDate, MsgReceivedAfterExpy)
	}
	return errs
}

// ValidateUpdate checks only the fields being changed; currentCode is the
// stored code which can never change.
func ValidateUpdate(input UpdateInput, currentCode string, today time.Time) pkgerrors.FieldErrors {
	errs := pkgerrors.FieldErrors{}
	today = day(today)

	if input.Code != nil && strings.TrimSpace(*input.Code) != currentCode {
		errs.Add(fieldCode, MsgImmutableCode)
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		errs.Add(fieldQuantity, MsgNegativeQuantity)
	}
	if input.ExpirationDate != nil {
		if input.ExpirationDate.IsZero() {
			errs.Add(fieldExpirationDate, MsgRequired)
		} else if day(*input.ExpirationDate).Before(today) {
			errs.Add(fieldExpirationDate, MsgExpirationInPast)
		}
	}
	if input.ReceivedDate != nil && day(*input.ReceivedDate).After(today) {
		errs.Add(fieldReceivedDate, MsgReceivedInFuture)
	}
	return errs
}
