package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/google/uuid"
)

type orderLineRequest struct {
	BatchID  string `json:"batch_id" validate:"required,uuid"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	Items            []orderLineRequest `json:"items" validate:"dive"`
	PickupAt         time.Time          `json:"pickup_at"`
	PaymentMethod    string             `json:"payment_method"`
	PrescriptionFile *string            `json:"prescription_file,omitempty" validate:"omitempty,max=2048"`
	PaymentProof     *string            `json:"payment_proof,omitempty" validate:"omitempty,max=2048"`
	Notes            *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r createOrderRequest) toInput() orders.BuildOrderInput {
	input := orders.BuildOrderInput{
		Items:            make([]orders.LineItemInput, 0, len(r.Items)),
		PickupAt:         r.PickupAt,
		PaymentMethod:    enums.PaymentMethod(strings.TrimSpace(r.PaymentMethod)),
		PrescriptionFile: r.PrescriptionFile,
		PaymentProof:     r.PaymentProof,
		Notes:            r.Notes,
	}
	for _, item := range r.Items {
		// batch_id format was validated on decode
		input.Items = append(input.Items, orders.LineItemInput{
			BatchID:  uuid.MustParse(item.BatchID),
			Quantity: item.Quantity,
		})
	}
	return input
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateOrder places an order for the authenticated customer.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}
		customerID, err := requireUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.BuildOrder(r.Context(), customerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}
		viewer, err := orderViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), viewer, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders pages orders newest first. Staff may filter by customer_id;
// customers always see only their own.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}
		viewer, err := orderViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := orders.ListParams{Pagination: page}
		query := r.URL.Query()
		if raw := strings.TrimSpace(query.Get("status")); raw != "" {
			status := enums.OrderStatus(raw)
			params.Status = &status
		}
		if raw := strings.TrimSpace(query.Get("customer_id")); raw != "" {
			customerID, err := uuid.Parse(raw)
			if err != nil {
				errs := pkgerrors.FieldErrors{}
				errs.Add("customer_id", "must be a valid UUID")
				responses.WriteError(r.Context(), logg, w, errs.Err("invalid query parameter"))
				return
			}
			params.CustomerID = &customerID
		}

		result, err := svc.List(r.Context(), viewer, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("order"))
			return
		}
		orderID, err := validators.ParseURLUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID.String())
		}
		order, err := svc.SetStatus(ctx, orderID, enums.OrderStatus(strings.TrimSpace(payload.Status)))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func orderViewer(r *http.Request) (orders.Viewer, error) {
	userID, err := requireUser(r.Context())
	if err != nil {
		return orders.Viewer{}, err
	}
	return orders.Viewer{UserID: userID, Role: middleware.RoleFromContext(r.Context())}, nil
}
