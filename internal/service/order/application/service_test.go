package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"meridian/internal/service/order/domain"
	"meridian/internal/service/order/domain/port"

	"go.opentelemetry.io/otel/trace/noop"
)

type fakeInventory struct {
	findResult *port.FindProductResult
	findErr    error
	decResult  *port.DecreaseStockResult
	decErr     error

	fetchCalls         int
	decreaseCalls      int
	decreasedProductID int64
	decreasedOrderID   string
}

func (f *fakeInventory) FetchProduct(ctx context.Context, productID int64) (*port.FindProductResult, error) {
	f.fetchCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findResult, nil
}

func (f *fakeInventory) DecreaseStock(ctx context.Context, productID int64, orderID string) (*port.DecreaseStockResult, error) {
	f.decreaseCalls++
	f.decreasedProductID = productID
	f.decreasedOrderID = orderID
	if f.decErr != nil {
		return nil, f.decErr
	}
	return f.decResult, nil
}

type fakeRepo struct {
	nextID    string
	createErr error
	deleteErr error

	orders      map[string]*domain.Order
	createCalls int
	deleteCalls int
	deletedIDs  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: "order-1", orders: map[string]*domain.Order{}}
}

func (r *fakeRepo) Create(ctx context.Context, order *domain.Order) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	order.ID = r.nextID
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedIDs = append(r.deletedIDs, id)
	delete(r.orders, id)
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeRepo) UpdateState(ctx context.Context, id string, state domain.State) error {
	if order, ok := r.orders[id]; ok {
		order.State = state
	}
	return nil
}

type fakeProducer struct {
	placed    int
	cancelled int
}

func (p *fakeProducer) PublishOrderPlaced(ctx context.Context, event *domain.OrderPlaced) error {
	p.placed++
	return nil
}

func (p *fakeProducer) PublishOrderCancelled(ctx context.Context, event *domain.OrderCancelled) error {
	p.cancelled++
	return nil
}

func newService(repo *fakeRepo, inv *fakeInventory, producer *fakeProducer) *OrderApplicationService {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewOrderApplicationService(repo, inv, producer, tracer)
}

func productFound(id int64, price float64, stock int) *port.FindProductResult {
	return &port.FindProductResult{
		Status:  http.StatusOK,
		Product: &port.ProductView{ID: id, Price: price, Stock: stock},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{
		findResult: productFound(1, 10, 5),
		decResult:  &port.DecreaseStockResult{Status: http.StatusOK},
	}
	producer := &fakeProducer{}
	svc := newService(repo, inv, producer)

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.Status)
	}
	if resp.OrderID != "order-1" {
		t.Errorf("expected store-assigned order id, got %q", resp.OrderID)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("expected no errors, got %v", resp.Errors)
	}
	if inv.decreasedProductID != 1 || inv.decreasedOrderID != "order-1" {
		t.Errorf("decreaseStock called with (%d, %q)", inv.decreasedProductID, inv.decreasedOrderID)
	}
	if repo.deleteCalls != 0 {
		t.Errorf("delete must not be called on success, got %d calls", repo.deleteCalls)
	}

	stored, err := repo.FindByID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("order should be durable: %v", err)
	}
	if stored.Price != 10 {
		t.Errorf("expected price snapshot 10, got %v", stored.Price)
	}
	if stored.State != domain.StateConfirmed {
		t.Errorf("expected confirmed order, got %s", stored.State)
	}
	if producer.placed != 1 || producer.cancelled != 0 {
		t.Errorf("expected one OrderPlaced event, got placed=%d cancelled=%d", producer.placed, producer.cancelled)
	}
}

func TestCreateOrder_StockTooLow(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{findResult: productFound(1, 10, 1)}
	svc := newService(repo, inv, &fakeProducer{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", resp.Status)
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != "Stock too low" {
		t.Errorf("expected [Stock too low], got %v", resp.Errors)
	}
	if resp.OrderID != "" {
		t.Errorf("expected no order id, got %q", resp.OrderID)
	}
	if repo.createCalls != 0 {
		t.Errorf("store must not be invoked, got %d create calls", repo.createCalls)
	}
	if inv.decreaseCalls != 0 {
		t.Errorf("decreaseStock must not be invoked, got %d calls", inv.decreaseCalls)
	}
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{findResult: &port.FindProductResult{Status: http.StatusNotFound}}
	svc := newService(repo, inv, &fakeProducer{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 42, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.Status)
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != "Product not found" {
		t.Errorf("expected [Product not found], got %v", resp.Errors)
	}
	if repo.createCalls != 0 {
		t.Errorf("store must not be invoked, got %d create calls", repo.createCalls)
	}
}

// 上游返回的 >=404 的错误码原样透传给调用方。
func TestCreateOrder_UpstreamErrorCodePropagated(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{findResult: &port.FindProductResult{Status: http.StatusInternalServerError}}
	svc := newService(repo, inv, &fakeProducer{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 42, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("expected upstream status 500 to propagate, got %d", resp.Status)
	}
	if repo.createCalls != 0 {
		t.Errorf("store must not be invoked, got %d create calls", repo.createCalls)
	}
}

func TestCreateOrder_ReservationConflictCompensates(t *testing.T) {
	repo := newFakeRepo()
	upstream := []string{"Stock changed since fetch"}
	inv := &fakeInventory{
		findResult: productFound(1, 10, 5),
		decResult:  &port.DecreaseStockResult{Status: http.StatusConflict, Errors: upstream},
	}
	producer := &fakeProducer{}
	svc := newService(repo, inv, producer)

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", resp.Status)
	}
	if resp.OrderID != "" {
		t.Errorf("expected no order id on conflict, got %q", resp.OrderID)
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != upstream[0] {
		t.Errorf("expected upstream errors %v, got %v", upstream, resp.Errors)
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("compensating delete must run exactly once, got %d calls", repo.deleteCalls)
	}
	if repo.deletedIDs[0] != "order-1" {
		t.Errorf("deleted wrong order: %q", repo.deletedIDs[0])
	}
	if len(repo.orders) != 0 {
		t.Errorf("no order may survive a reservation conflict, store holds %d", len(repo.orders))
	}
	if producer.cancelled != 1 || producer.placed != 0 {
		t.Errorf("expected one OrderCancelled event, got placed=%d cancelled=%d", producer.placed, producer.cancelled)
	}
}

func TestCreateOrder_FetchTransportFailure(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{findErr: errors.New("connection refused")}
	svc := newService(repo, inv, &fakeProducer{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 1})
	if err == nil {
		t.Fatal("expected infrastructure fault, got nil error")
	}
	if resp != nil {
		t.Errorf("fault must not produce an outcome, got %+v", resp)
	}
	if repo.createCalls != 0 {
		t.Errorf("store must not be invoked, got %d create calls", repo.createCalls)
	}
}

func TestCreateOrder_PersistFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("db down")
	inv := &fakeInventory{findResult: productFound(1, 10, 5)}
	svc := newService(repo, inv, &fakeProducer{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 1})
	if err == nil {
		t.Fatal("expected infrastructure fault, got nil error")
	}
	if inv.decreaseCalls != 0 {
		t.Errorf("decreaseStock must never run before the local commit succeeds, got %d calls", inv.decreaseCalls)
	}
}

// 预留调用的传输层失败意味着结果未知，此时绝不能补偿删除。
func TestCreateOrder_ReservationTransportFailure(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{
		findResult: productFound(1, 10, 5),
		decErr:     errors.New("timeout"),
	}
	svc := newService(repo, inv, &fakeProducer{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 1})
	if err == nil {
		t.Fatal("expected infrastructure fault, got nil error")
	}
	if repo.deleteCalls != 0 {
		t.Errorf("compensation must not run before the reservation outcome is known, got %d delete calls", repo.deleteCalls)
	}
}

// 补偿删除失败是次生的基础设施故障，不能被冲突结论掩盖。
func TestCreateOrder_CompensationFailureSurfacesFault(t *testing.T) {
	repo := newFakeRepo()
	repo.deleteErr = errors.New("db down")
	inv := &fakeInventory{
		findResult: productFound(1, 10, 5),
		decResult:  &port.DecreaseStockResult{Status: http.StatusConflict},
	}
	svc := newService(repo, inv, &fakeProducer{})

	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 1})
	if err == nil {
		t.Fatal("expected fault when the compensating delete fails, got nil error")
	}
	if resp != nil {
		t.Errorf("compensation failure must not look like a business outcome, got %+v", resp)
	}
}

// 被拒绝的请求不留任何残留状态，重放得到完全一致的结果。
func TestCreateOrder_RejectedReplayIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInventory{findResult: productFound(1, 10, 1)}
	svc := newService(repo, inv, &fakeProducer{})

	req := &CreateOrderRequest{RequesterID: "user-1", ProductID: 1, Quantity: 5}
	first, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Status != second.Status || first.OrderID != second.OrderID {
		t.Errorf("replay diverged: %+v vs %+v", first, second)
	}
	if len(repo.orders) != 0 {
		t.Errorf("rejected requests must leave no residual store record, found %d", len(repo.orders))
	}
}
