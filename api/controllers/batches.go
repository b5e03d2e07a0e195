package controllers

import (
	"net/http"

	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/google/uuid"
)

type createBatchRequest struct {
	Code           string  `json:"batch_code"`
	Quantity       int     `json:"quantity"`
	ExpirationDate *string `json:"expiration_date"`
	ReceivedDate   *string `json:"received_date,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (r createBatchRequest) toInput() (batches.CreateInput, error) {
	errs := pkgerrors.FieldErrors{}
	input := batches.CreateInput{
		Code:         validators.SanitizeString(r.Code, 64),
		Quantity:     r.Quantity,
		ReceivedDate: parseDate(errs, "received_date", r.ReceivedDate),
		IsActive:     r.IsActive,
	}
	if exp := parseDate(errs, "expiration_date", r.ExpirationDate); exp != nil {
		input.ExpirationDate = *exp
	}
	return input, errs.Err("invalid batch")
}

type updateBatchRequest struct {
	Code           *string `json:"batch_code,omitempty"`
	Quantity       *int    `json:"quantity,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
	ReceivedDate   *string `json:"received_date,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

func (r updateBatchRequest) toInput() (batches.UpdateInput, error) {
	errs := pkgerrors.FieldErrors{}
	input := batches.UpdateInput{
		Code:           r.Code,
		Quantity:       r.Quantity,
		ExpirationDate: parseDate(errs, "expiration_date", r.ExpirationDate),
		ReceivedDate:   parseDate(errs, "received_date", r.ReceivedDate),
		IsActive:       r.IsActive,
	}
	return input, errs.Err("invalid batch")
}

func ListBatches(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("batch"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListActiveBatches returns the sellable batches in FEFO order.
func ListActiveBatches(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("batch"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListActive(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// NextBatch returns the batch the next sale should draw from.
func NextBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("batch"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := svc.NextBatch(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, next)
	}
}

func CreateBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("batch"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createBatchRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("batch"))
			return
		}
		productID, batchID, err := batchPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateBatchRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), productID, batchID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func DeleteBatch(svc batches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("batch"))
			return
		}
		productID, batchID, err := batchPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID, batchID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func batchPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	productID, err := validators.ParseURLUUID(r, "productId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	batchID, err := validators.ParseURLUUID(r, "batchId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return productID, batchID, nil
}
