package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/prescriptions"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, method, pattern, target, body string, ctxFn func(context.Context) context.Context, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if ctxFn != nil {
		req = req.WithContext(ctxFn(req.Context()))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func as(userID uuid.UUID, role enums.UserRole) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return middleware.WithIdentity(ctx, userID, role)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

type stubOrders struct {
	built     orders.BuildOrderInput
	customer  uuid.UUID
	viewer    orders.Viewer
	params    orders.ListParams
	status    enums.OrderStatus
	err       error
	buildDone bool
}

func (s *stubOrders) BuildOrder(_ context.Context, customerID uuid.UUID, input orders.BuildOrderInput) (*orders.OrderDTO, error) {
	s.buildDone = true
	s.customer = customerID
	s.built = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: uuid.New(), Status: enums.OrderStatusPending}, nil
}

func (s *stubOrders) SetStatus(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) (*orders.OrderDTO, error) {
	s.status = status
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: orderID, Status: status}, nil
}

func (s *stubOrders) Get(_ context.Context, viewer orders.Viewer, orderID uuid.UUID) (*orders.OrderDTO, error) {
	s.viewer = viewer
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: orderID}, nil
}

func (s *stubOrders) List(_ context.Context, viewer orders.Viewer, params orders.ListParams) (*orders.ListResult, error) {
	s.viewer = viewer
	s.params = params
	return &orders.ListResult{}, s.err
}

func TestCreateOrderMapsPayload(t *testing.T) {
	svc := &stubOrders{}
	customer := uuid.New()
	batchID := uuid.New()
	body := `{"items":[{"batch_id":"` + batchID.String() + `","quantity":2}],"pickup_at":"2030-01-02T10:00:00Z","payment_method":"online","payment_proof":"proof.png"}`

	rec := serve(t, http.MethodPost, "/orders", "/orders", body, as(customer, enums.UserRoleCustomer), CreateOrder(svc, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, customer, svc.customer)
	require.Len(t, svc.built.Items, 1)
	assert.Equal(t, batchID, svc.built.Items[0].BatchID)
	assert.Equal(t, 2, svc.built.Items[0].Quantity)
	assert.Equal(t, enums.PaymentMethodOnline, svc.built.PaymentMethod)
	assert.Equal(t, time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC), svc.built.PickupAt.UTC())
	assert.Equal(t, "proof.png", *svc.built.PaymentProof)
}

func TestCreateOrderRejectsBadBatchID(t *testing.T) {
	svc := &stubOrders{}
	body := `{"items":[{"batch_id":"nope","quantity":1}],"payment_method":"cash"}`
	rec := serve(t, http.MethodPost, "/orders", "/orders", body, as(uuid.New(), enums.UserRoleCustomer), CreateOrder(svc, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.buildDone)
}

func TestCreateOrderPassesEmptyCartToService(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeEmptyCart, "order has no items")}
	rec := serve(t, http.MethodPost, "/orders", "/orders", `{"items":[],"payment_method":"cash"}`, as(uuid.New(), enums.UserRoleCustomer), CreateOrder(svc, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeEmptyCart), errorCode(t, rec))
	assert.True(t, svc.buildDone)
}

func TestCreateOrderRequiresUser(t *testing.T) {
	rec := serve(t, http.MethodPost, "/orders", "/orders", `{}`, nil, CreateOrder(&stubOrders{}, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListOrdersForwardsFilters(t *testing.T) {
	svc := &stubOrders{}
	staff := uuid.New()
	customer := uuid.New()
	target := "/orders?status=processing&limit=5&customer_id=" + customer.String()

	rec := serve(t, http.MethodGet, "/orders", target, "", as(staff, enums.UserRolePharmacyStaff), ListOrders(svc, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, orders.Viewer{UserID: staff, Role: enums.UserRolePharmacyStaff}, svc.viewer)
	assert.Equal(t, enums.OrderStatusProcessing, *svc.params.Status)
	assert.Equal(t, customer, *svc.params.CustomerID)
	assert.Equal(t, 5, svc.params.Pagination.Limit)
}

func TestGetOrderMapsForbidden(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")}
	orderID := uuid.New()
	rec := serve(t, http.MethodGet, "/orders/{orderId}", "/orders/"+orderID.String(), "", as(uuid.New(), enums.UserRoleCustomer), GetOrder(svc, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := &stubOrders{}
	orderID := uuid.New()
	rec := serve(t, http.MethodPut, "/orders/{orderId}/status", "/orders/"+orderID.String()+"/status", `{"status":"processing"}`, as(uuid.New(), enums.UserRoleAdmin), UpdateOrderStatus(svc, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.OrderStatusProcessing, svc.status)

	svc.err = pkgerrors.New(pkgerrors.CodeIllegalTransition, "status transition not allowed")
	rec = serve(t, http.MethodPut, "/orders/{orderId}/status", "/orders/"+orderID.String()+"/status", `{"status":"pending"}`, as(uuid.New(), enums.UserRoleAdmin), UpdateOrderStatus(svc, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, http.MethodPut, "/orders/{orderId}/status", "/orders/"+orderID.String()+"/status", `{}`, as(uuid.New(), enums.UserRoleAdmin), UpdateOrderStatus(svc, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubPrescriptions struct {
	prescriptions.Service
	verifier uuid.UUID
	input    prescriptions.VerifyInput
	customer uuid.UUID
}

func (s *stubPrescriptions) Verify(_ context.Context, id, verifierID uuid.UUID, input prescriptions.VerifyInput) (*prescriptions.QueueItemDTO, error) {
	s.verifier = verifierID
	s.input = input
	return &prescriptions.QueueItemDTO{}, nil
}

func (s *stubPrescriptions) ListForCustomer(_ context.Context, customerID uuid.UUID) ([]prescriptions.QueueItemDTO, error) {
	s.customer = customerID
	return []prescriptions.QueueItemDTO{}, nil
}

func TestVerifyPrescription(t *testing.T) {
	svc := &stubPrescriptions{}
	pharmacist := uuid.New()
	id := uuid.New()
	rec := serve(t, http.MethodPost, "/prescriptions/{prescriptionId}/verify", "/prescriptions/"+id.String()+"/verify", `{"status":"approved","notes":"ok"}`, as(pharmacist, enums.UserRolePharmacyStaff), VerifyPrescription(svc, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, pharmacist, svc.verifier)
	assert.Equal(t, enums.PrescriptionStatusApproved, svc.input.Status)
	assert.Equal(t, "ok", *svc.input.Notes)
}

func TestMyPrescriptionsScopesToCaller(t *testing.T) {
	svc := &stubPrescriptions{}
	customer := uuid.New()
	rec := serve(t, http.MethodGet, "/prescriptions/mine", "/prescriptions/mine", "", as(customer, enums.UserRoleCustomer), MyPrescriptions(svc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, customer, svc.customer)
}

type stubReports struct {
	reports.Service
	from, to time.Time
	asOf     time.Time
	limit    int
}

func (s *stubReports) Sales(_ context.Context, from, to time.Time) (*reports.SalesReport, error) {
	s.from, s.to = from, to
	return &reports.SalesReport{}, nil
}

func (s *stubReports) Inventory(_ context.Context, asOf time.Time) (*reports.InventoryReport, error) {
	s.asOf = asOf
	return &reports.InventoryReport{}, nil
}

func (s *stubReports) RecentOrders(_ context.Context, limit int) ([]reports.RecentOrder, error) {
	s.limit = limit
	return nil, nil
}

func TestSalesReportParsesRange(t *testing.T) {
	svc := &stubReports{}
	rec := serve(t, http.MethodGet, "/reports/sales", "/reports/sales?start_date=2024-03-01&end_date=2024-03-31", "", nil, SalesReport(svc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-01", svc.from.Format("2006-01-02"))
	assert.Equal(t, "2024-03-31", svc.to.Format("2006-01-02"))

	rec = serve(t, http.MethodGet, "/reports/sales", "/reports/sales?start_date=March", "", nil, SalesReport(svc, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInventoryAndRecentDefaults(t *testing.T) {
	svc := &stubReports{}
	rec := serve(t, http.MethodGet, "/reports/inventory", "/reports/inventory", "", nil, InventoryReport(svc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.asOf.IsZero())

	rec = serve(t, http.MethodGet, "/dashboard/recent-orders", "/dashboard/recent-orders", "", nil, RecentOrders(svc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.DefaultRecentLimit, svc.limit)
}

type stubBatches struct {
	batches.Service
	created batches.CreateInput
}

func (s *stubBatches) Create(_ context.Context, productID uuid.UUID, input batches.CreateInput) (*batches.BatchDTO, error) {
	s.created = input
	return &batches.BatchDTO{ProductID: productID}, nil
}

func TestCreateBatchParsesDates(t *testing.T) {
	svc := &stubBatches{}
	productID := uuid.New()
	target := "/products/" + productID.String() + "/batches"

	rec := serve(t, http.MethodPost, "/products/{productId}/batches", target, `{"batch_code":"1001","quantity":5,"expiration_date":"2031-06-30"}`, nil, CreateBatch(svc, nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2031-06-30", svc.created.ExpirationDate.Format("2006-01-02"))
	assert.Nil(t, svc.created.ReceivedDate)

	rec = serve(t, http.MethodPost, "/products/{productId}/batches", target, `{"batch_code":"1001","quantity":5,"expiration_date":"30/06/2031"}`, nil, CreateBatch(svc, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubProducts struct {
	product.Service
	input product.ListInput
}

func (s *stubProducts) List(_ context.Context, input product.ListInput) (*product.ListResult, error) {
	s.input = input
	return &product.ListResult{}, nil
}

func TestListProductsInactiveIsStaffOnly(t *testing.T) {
	svc := &stubProducts{}
	serve(t, http.MethodGet, "/products", "/products?include_inactive=true&category=tablet", "", as(uuid.New(), enums.UserRoleCustomer), ListProducts(svc, nil))
	assert.False(t, svc.input.IncludeInactive)
	require.NotNil(t, svc.input.Category)

	serve(t, http.MethodGet, "/products", "/products?include_inactive=true", "", as(uuid.New(), enums.UserRoleAdmin), ListProducts(svc, nil))
	assert.True(t, svc.input.IncludeInactive)

	rec := serve(t, http.MethodGet, "/products", "/products?category=toys", "", nil, ListProducts(svc, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := serve(t, http.MethodGet, "/health/ready", "/health/ready", "", nil, HealthReady(cfg, map[string]Pinger{"db": ok}, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, http.MethodGet, "/health/ready", "/health/ready", "", nil, HealthReady(cfg, map[string]Pinger{"db": ok, "redis": down}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}
