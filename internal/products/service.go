package product

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
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management and the availability read paths.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Categories() []CategoryDTO
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name                 string
	Brand                string
	Category             enums.ProductCategory
	Price                decimal.Decimal
	Description          string
	ImageURL             *string
	RequiresPrescription bool
	LowStockThreshold    *int
	IsActive             *bool
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name                 *string
	Brand                *string
	Category             *enums.ProductCategory
	Price                *decimal.Decimal
	Description          *string
	ImageURL             *string
	RequiresPrescription *bool
	LowStockThreshold    *int
	IsActive             *bool
}

// ListInput captures catalog filters.
type ListInput struct {
	Category        *enums.ProductCategory
	Search          string
	IncludeInactive bool
	Pagination      pagination.Params
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the product service.
type ServiceParams struct {
	Repo             *Repository
	Batches          *batches.Repository
	Tx               txRunner
	Location         *time.Location
	Now              func() time.Time
	DefaultThreshold int
}

type service struct {
	repo             *Repository
	batches          *batches.Repository
	tx               txRunner
	loc              *time.Location
	now              func() time.Time
	defaultThreshold int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Batches == nil {
		return nil, fmt.Errorf("batch repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.DefaultThreshold < 0 {
		return nil, fmt.Errorf("default low stock threshold must not be negative")
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
		repo:             params.Repo,
		batches:          params.Batches,
		tx:               params.Tx,
		loc:              loc,
		now:              now,
		defaultThreshold: params.DefaultThreshold,
	}, nil
}

func (s *service) today() time.Time {
	return batches.CalendarDay(s.now(), s.loc)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Brand = strings.TrimSpace(input.Brand)

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	threshold := s.defaultThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}

	errs := validateCreate(input)
	if active {
		if err := s.checkUnique(ctx, s.repo, errs, input.Name, input.Brand, nil); err != nil {
			return nil, err
		}
	}
	if err := errs.Err("invalid product"); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:                 input.Name,
		Brand:                input.Brand,
		Category:             input.Category,
		Price:                input.Price.Round(2),
		Description:          strings.TrimSpace(input.Description),
		ImageURL:             input.ImageURL,
		RequiresPrescription: input.RequiresPrescription,
		LowStockThreshold:    threshold,
		IsActive:             active,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	dto := NewProductDTO(*product, nil, s.today())
	return &dto, nil
}

func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	errs := validateUpdate(input)
	if err := errs.Err("invalid product"); err != nil {
		return nil, err
	}

	var (
		updated models.Product
		rows    []models.Batch
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := s.load(ctx, repo, productID)
		if err != nil {
			return err
		}

		applyUpdate(product, input)

		if product.IsActive {
			errs := pkgerrors.FieldErrors{}
			if err := s.checkUnique(ctx, repo, errs, product.Name, product.Brand, &product.ID); err != nil {
				return err
			}
			if err := errs.Err("invalid product"); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		updated = *product

		rows, err = s.batches.WithTx(tx).ListByProduct(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list batches")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := NewProductDTO(updated, rows, s.today())
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, productID); err != nil {
			return err
		}

		referenced, err := s.batches.WithTx(tx).AnyReferencedForProduct(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check batch references")
		}
		if referenced {
			return pkgerrors.New(pkgerrors.CodeConflict, "product has batches referenced by orders").
				WithDetails(map[string]any{"product_id": productID.String()})
		}

		if err := repo.DeleteBatches(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete batches")
		}
		if err := repo.Delete(ctx, productID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is still referenced")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, s.repo, productID)
	if err != nil {
		return nil, err
	}
	rows, err := s.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list batches")
	}
	dto := NewProductDTO(*product, rows, s.today())
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category").
			WithDetails(map[string][]string{fieldCategory: {msgInvalidCategory}})
	}

	page, err := s.repo.List(ctx, ListQuery{
		Category:        input.Category,
		Search:          input.Search,
		IncludeInactive: input.IncludeInactive,
		Pagination:      input.Pagination,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	grouped, err := s.batches.ListByProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list batches")
	}

	today := s.today()
	result := &ListResult{
		Products:   make([]ProductDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, p := range page.Items {
		result.Products = append(result.Products, NewProductDTO(p, grouped[p.ID], today))
	}
	return result, nil
}

func (s *service) Categories() []CategoryDTO {
	values := enums.ProductCategories()
	out := make([]CategoryDTO, 0, len(values))
	for _, c := range values {
		out = append(out, CategoryDTO{Value: c, Label: categoryLabel(c)})
	}
	return out
}

// checkUnique records name and brand collisions with other active products.
func (s *service) checkUnique(ctx context.Context, repo *Repository, errs pkgerrors.FieldErrors, name, brand string, excludeID *uuid.UUID) error {
	if name != "" && !errs.Has(fieldName) {
		taken, err := repo.ActiveColumnTaken(ctx, "name", name, excludeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product name")
		}
		if taken {
			errs.Add(fieldName, msgDuplicateName)
		}
	}
	if brand != "" && !errs.Has(fieldBrand) {
		taken, err := repo.ActiveColumnTaken(ctx, "brand", brand, excludeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product brand")
		}
		if taken {
			errs.Add(fieldBrand, msgDuplicateBrand)
		}
	}
	return nil
}

func (s *service) load(ctx context.Context, repo *Repository, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func applyUpdate(p *models.Product, input UpdateInput) {
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		p.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Price != nil {
		p.Price = input.Price.Round(2)
	}
	if input.Description != nil {
		p.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		url := strings.TrimSpace(*input.ImageURL)
		if url == "" {
			p.ImageURL = nil
		} else {
			p.ImageURL = &url
		}
	}
	if input.RequiresPrescription != nil {
		p.RequiresPrescription = *input.RequiresPrescription
	}
	if input.LowStockThreshold != nil {
		p.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
}
