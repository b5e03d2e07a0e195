package enums

import "fmt"

// ProductCategory groups products by dosage form.
type ProductCategory string

const (
	ProductCategoryLiquid        ProductCategory = "liquid"
	ProductCategoryTablet        ProductCategory = "tablet"
	ProductCategoryCapsule       ProductCategory = "capsule"
	ProductCategoryTopical       ProductCategory = "topical"
	ProductCategorySuppositories ProductCategory = "suppositories"
	ProductCategoryDrops         ProductCategory = "drops"
	ProductCategoryInjection     ProductCategory = "injection"
	ProductCategoryInhaler       ProductCategory = "inhaler"
	ProductCategoryOthers        ProductCategory = "others"
)

var validProductCategories = []ProductCategory{
	ProductCategoryLiquid,
	ProductCategoryTablet,
	ProductCategoryCapsule,
	ProductCategoryTopical,
	ProductCategorySuppositories,
	ProductCategoryDrops,
	ProductCategoryInjection,
	ProductCategoryInhaler,
	ProductCategoryOthers,
}

// String implements fmt.Stringer.
func (v ProductCategory) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ProductCategory.
func (v ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductCategories returns every category in display order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}
