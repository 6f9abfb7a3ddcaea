package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meridian/internal/service/order/application"
	"meridian/internal/service/order/domain"
	"meridian/internal/service/order/domain/port"

	"go.opentelemetry.io/otel/trace/noop"
)

type stubInventory struct {
	findResult *port.FindProductResult
	decResult  *port.DecreaseStockResult
}

func (s *stubInventory) FetchProduct(ctx context.Context, productID int64) (*port.FindProductResult, error) {
	return s.findResult, nil
}

func (s *stubInventory) DecreaseStock(ctx context.Context, productID int64, orderID string) (*port.DecreaseStockResult, error) {
	return s.decResult, nil
}

type stubRepo struct {
	orders map[string]*domain.Order
}

func (r *stubRepo) Create(ctx context.Context, order *domain.Order) error {
	order.ID = "order-1"
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id string) error {
	delete(r.orders, id)
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *stubRepo) UpdateState(ctx context.Context, id string, state domain.State) error {
	if order, ok := r.orders[id]; ok {
		order.State = state
	}
	return nil
}

func newTestMux(inv *stubInventory) (*http.ServeMux, *stubRepo) {
	repo := &stubRepo{orders: map[string]*domain.Order{}}
	svc := application.NewOrderApplicationService(repo, inv, nil, noop.NewTracerProvider().Tracer("test"))
	mux := http.NewServeMux()
	NewOrderHandler(svc).RegisterRoutes(mux, nil)
	return mux, repo
}

func TestCreateOrderEndpoint(t *testing.T) {
	mux, _ := newTestMux(&stubInventory{
		findResult: &port.FindProductResult{Status: http.StatusOK, Product: &port.ProductView{ID: 1, Price: 10, Stock: 5}},
		decResult:  &port.DecreaseStockResult{Status: http.StatusOK},
	})

	body := `{"requesterId":"user-1","productId":1,"quantity":2}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp application.CreateOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OrderID != "order-1" || resp.Status != http.StatusOK {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateOrderEndpointConflict(t *testing.T) {
	mux, repo := newTestMux(&stubInventory{
		findResult: &port.FindProductResult{Status: http.StatusOK, Product: &port.ProductView{ID: 1, Price: 10, Stock: 5}},
		decResult:  &port.DecreaseStockResult{Status: http.StatusConflict, Errors: []string{"Stock too low"}},
	})

	body := `{"requesterId":"user-1","productId":1,"quantity":2}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if len(repo.orders) != 0 {
		t.Errorf("conflicting order must be compensated away, store holds %d", len(repo.orders))
	}
}

func TestCreateOrderEndpointRejectsMalformedRequest(t *testing.T) {
	mux, _ := newTestMux(&stubInventory{})

	cases := []string{
		`not json`,
		`{"requesterId":"","productId":1,"quantity":1}`,
		`{"requesterId":"user-1","productId":1,"quantity":0}`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestGetOrderEndpoint(t *testing.T) {
	mux, repo := newTestMux(&stubInventory{})
	order, _ := domain.NewOrder(1, "user-1", 10)
	repo.Create(context.Background(), order)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/order-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown order, got %d", rec.Code)
	}
}
