package product

import (
	"strings"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	fieldName      = "product_name"
	fieldBrand     = "brand_name"
	fieldCategory  = "category"
	fieldPrice     = "price"
	fieldThreshold = "low_stock_threshold"

	msgRequired        = "This field is required."
	msgDuplicateName   = "A product with this name already exists."
	msgDuplicateBrand  = "A product with this brand already exists."
	msgInvalidCategory = "Select a valid category."
	msgPricePositive   = "Price must be greater than zero."
	msgThresholdRange  = "Low stock threshold cannot be negative."
)

func validateFields(name, brand *string, category *enums.ProductCategory, price *decimal.Decimal, threshold *int) pkgerrors.FieldErrors {
	errs := pkgerrors.FieldErrors{}
	if name != nil && strings.TrimSpace(*name) == "" {
		errs.Add(fieldName, msgRequired)
	}
	if brand != nil && strings.TrimSpace(*brand) == "" {
		errs.Add(fieldBrand, msgRequired)
	}
	if category != nil && !category.IsValid() {
		errs.Add(fieldCategory, msgInvalidCategory)
	}
	if price != nil && !price.IsPositive() {
		errs.Add(fieldPrice, msgPricePositive)
	}
	if threshold != nil && *threshold < 0 {
		errs.Add(fieldThreshold, msgThresholdRange)
	}
	return errs
}

func validateCreate(input CreateInput) pkgerrors.FieldErrors {
	return validateFields(&input.Name, &input.Brand, &input.Category, &input.Price, input.LowStockThreshold)
}

func validateUpdate(input UpdateInput) pkgerrors.FieldErrors {
	return validateFields(input.Name, input.Brand, input.Category, input.Price, input.LowStockThreshold)
}
