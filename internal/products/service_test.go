package product

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(ServiceParams{
		Repo:             NewRepository(conn),
		Batches:          batches.NewRepository(conn),
		Tx:               client,
		Now:              func() time.Time { return fixedNow },
		DefaultThreshold: 10,
	})
	require.NoError(t, err)
	return svc, conn
}

func createInput(name, brand string) CreateInput {
	return CreateInput{
		Name:     name,
		Brand:    brand,
		Category: enums.ProductCategoryTablet,
		Price:    decimal.RequireFromString("12.50"),
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateProductDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	dto, err := svc.Create(context.Background(), createInput("  Amoxicillin ", "Amoxil"))
	require.NoError(t, err)
	assert.Equal(t, "Amoxicillin", dto.Name)
	assert.True(t, dto.IsActive)
	assert.Equal(t, 10, dto.LowStockThreshold)
	assert.Equal(t, enums.AvailabilityNoBatch, dto.Availability)
	assert.False(t, dto.IsAvailable)
	assert.True(t, dto.IsOutOfStock)
	assert.Empty(t, dto.ActiveBatches)
}

func TestCreateProductCollectsUniquenessAndFieldErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput("Ibuprofen", "Advil"))
	require.NoError(t, err)

	input := createInput("ibuprofen", "ADVIL")
	input.Price = decimal.Zero
	_, err = svc.Create(ctx, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string][]string)
	assert.Equal(t, []string{msgDuplicateName}, details[fieldName])
	assert.Equal(t, []string{msgDuplicateBrand}, details[fieldBrand])
	assert.Equal(t, []string{msgPricePositive}, details[fieldPrice])

	inactive := createInput("Ibuprofen", "Advil")
	inactive.IsActive = ptr(false)
	_, err = svc.Create(ctx, inactive)
	assert.NoError(t, err, "inactive products do not collide")
}

func TestUpdateProductExcludesSelf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput("Cetirizine", "Zyrtec"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, createInput("Loratadine", "Claritin"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: ptr("Cetirizine"), Price: ptr(decimal.RequireFromString("9.999"))})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.00").Equal(updated.Price))

	_, err = svc.Update(ctx, other.ID, UpdateInput{Brand: ptr("zyrtec")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Name: ptr("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetIncludesDerivedStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput("Mefenamic", "Dolfenal"))
	require.NoError(t, err)
	for i, b := range []models.Batch{
		{Code: "101", Quantity: 5, ExpirationDate: fixedNow.AddDate(0, 2, 0), IsActive: true},
		{Code: "102", Quantity: 50, ExpirationDate: fixedNow.AddDate(0, 0, -3), IsActive: true},
		{Code: "103", Quantity: 20, ExpirationDate: fixedNow.AddDate(0, 1, 0), IsActive: false},
	} {
		b.ProductID = created.ID
		b.ReceivedDate = fixedNow.AddDate(0, 0, -10-i)
		require.NoError(t, conn.Create(&b).Error)
	}

	dto, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 55, dto.TotalStock)
	assert.True(t, dto.IsAvailable)
	assert.Equal(t, enums.AvailabilityLowStock, dto.Availability)
	assert.Equal(t, "Low Stock", dto.AvailabilityLabel)
	require.Len(t, dto.ActiveBatches, 1)
	assert.Equal(t, "101", dto.ActiveBatches[0].Code)
}

func TestDeleteProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	free, err := svc.Create(ctx, createInput("Loperamide", "Imodium"))
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.Batch{ProductID: free.ID, Code: "201", Quantity: 1, ExpirationDate: fixedNow.AddDate(1, 0, 0), ReceivedDate: fixedNow, IsActive: true}).Error)

	require.NoError(t, svc.Delete(ctx, free.ID))
	var remaining int64
	require.NoError(t, conn.Model(&models.Batch{}).Where("product_id = ?", free.ID).Count(&remaining).Error)
	assert.Zero(t, remaining, "batches are deleted with the product")

	used, err := svc.Create(ctx, createInput("Salbutamol", "Ventolin"))
	require.NoError(t, err)
	batch := models.Batch{ProductID: used.ID, Code: "202", Quantity: 5, ExpirationDate: fixedNow.AddDate(1, 0, 0), ReceivedDate: fixedNow, IsActive: true}
	require.NoError(t, conn.Create(&batch).Error)
	customer := models.User{Email: "c@example.com", Role: enums.UserRoleCustomer}
	require.NoError(t, conn.Create(&customer).Error)
	order := models.Order{CustomerID: customer.ID, PickupAt: fixedNow.Add(time.Hour), PaymentMethod: enums.PaymentMethodCash}
	require.NoError(t, conn.Create(&order).Error)
	require.NoError(t, conn.Create(&models.OrderItem{OrderID: order.ID, BatchID: batch.ID, ProductID: used.ID, Quantity: 1, UnitPrice: used.Price, Subtotal: used.Price}).Error)

	err = svc.Delete(ctx, used.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, uuid.New()), pkgerrors.CodeNotFound))
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	names := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	for i, name := range names {
		p := models.Product{
			Name:              name,
			Brand:             "Brand" + name,
			Category:          enums.ProductCategoryCapsule,
			Price:             decimal.NewFromInt(1),
			LowStockThreshold: 10,
			IsActive:          name != "Delta",
			CreatedAt:         fixedNow.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(&p).Error)
	}
	syrup := models.Product{Name: "Syrup", Brand: "Liquido", Category: enums.ProductCategoryLiquid, Price: decimal.NewFromInt(2), IsActive: true, CreatedAt: fixedNow.Add(time.Hour)}
	require.NoError(t, conn.Create(&syrup).Error)

	capsules := enums.ProductCategoryCapsule
	first, err := svc.List(ctx, ListInput{Category: &capsules, Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	assert.Equal(t, "Charlie", first.Products[0].Name)
	assert.Equal(t, "Bravo", first.Products[1].Name)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, ListInput{Category: &capsules, Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Equal(t, "Alpha", second.Products[0].Name)
	assert.Empty(t, second.NextCursor)

	withInactive, err := svc.List(ctx, ListInput{Category: &capsules, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, withInactive.Products, 4)

	search, err := svc.List(ctx, ListInput{Search: "liqui"})
	require.NoError(t, err)
	require.Len(t, search.Products, 1)
	assert.Equal(t, "Syrup", search.Products[0].Name)

	bad := enums.ProductCategory("herbal")
	_, err = svc.List(ctx, ListInput{Category: &bad})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.List(ctx, ListInput{Pagination: pagination.Params{Cursor: "garbage"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCategories(t *testing.T) {
	svc, _ := newTestService(t)
	cats := svc.Categories()
	require.Len(t, cats, 9)
	assert.Equal(t, CategoryDTO{Value: enums.ProductCategoryLiquid, Label: "Liquid"}, cats[0])
}
