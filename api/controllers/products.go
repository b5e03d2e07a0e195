package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/api/responses"
	"github.com/angelmondragon/pharmacy-backend/api/validators"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name                 string          `json:"product_name"`
	Brand                string          `json:"brand_name"`
	Category             string          `json:"category"`
	Price                decimal.Decimal `json:"price"`
	Description          string          `json:"description" validate:"max=5000"`
	ImageURL             *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	RequiresPrescription bool            `json:"requires_prescription"`
	LowStockThreshold    *int            `json:"low_stock_threshold,omitempty"`
	IsActive             *bool           `json:"is_active,omitempty"`
}

func (r createProductRequest) toInput() product.CreateInput {
	return product.CreateInput{
		Name:                 validators.SanitizeString(r.Name, 200),
		Brand:                validators.SanitizeString(r.Brand, 200),
		Category:             enums.ProductCategory(strings.TrimSpace(r.Category)),
		Price:                r.Price,
		Description:          strings.TrimSpace(r.Description),
		ImageURL:             validators.OptionalString(r.ImageURL, 2048),
		RequiresPrescription: r.RequiresPrescription,
		LowStockThreshold:    r.LowStockThreshold,
		IsActive:             r.IsActive,
	}
}

type updateProductRequest struct {
	Name                 *string          `json:"product_name,omitempty"`
	Brand                *string          `json:"brand_name,omitempty"`
	Category             *string          `json:"category,omitempty"`
	Price                *decimal.Decimal `json:"price,omitempty"`
	Description          *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	ImageURL             *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	RequiresPrescription *bool            `json:"requires_prescription,omitempty"`
	LowStockThreshold    *int             `json:"low_stock_threshold,omitempty"`
	IsActive             *bool            `json:"is_active,omitempty"`
}

func (r updateProductRequest) toInput() product.UpdateInput {
	input := product.UpdateInput{
		Price:                r.Price,
		ImageURL:             r.ImageURL,
		RequiresPrescription: r.RequiresPrescription,
		LowStockThreshold:    r.LowStockThreshold,
		IsActive:             r.IsActive,
	}
	if r.Name != nil {
		name := validators.SanitizeString(*r.Name, 200)
		input.Name = &name
	}
	if r.Brand != nil {
		brand := validators.SanitizeString(*r.Brand, 200)
		input.Brand = &brand
	}
	if r.Category != nil {
		category := enums.ProductCategory(strings.TrimSpace(*r.Category))
		input.Category = &category
	}
	if r.Description != nil {
		description := strings.TrimSpace(*r.Description)
		input.Description = &description
	}
	return input
}

// ListProducts serves the catalog. Inactive products are visible to staff only.
func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.ListInput{
			Search:          validators.SanitizeString(r.URL.Query().Get("search"), 100),
			IncludeInactive: includeInactive && middleware.RoleFromContext(r.Context()).IsStaff(),
			Pagination:      page,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseProductCategory(raw)
			if err != nil {
				errs := pkgerrors.FieldErrors{}
				errs.Add("category", "Select a valid category.")
				responses.WriteError(r.Context(), logg, w, errs.Err("invalid category"))
				return
			}
			input.Category = &category
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !dto.IsActive && !middleware.RoleFromContext(r.Context()).IsStaff() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Update(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseURLUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		responses.WriteSuccess(w, svc.Categories())
	}
}
