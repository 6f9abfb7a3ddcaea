// internal/service/order/domain/port/inventory.go
package port

import "context"

// ProductView 是商品服务返回的只读商品视图。
type ProductView struct {
	ID    int64
	Price float64
	Stock int
}

// FindProductResult 携带商品查询的业务状态码。
// Status >= 404 统一视为"商品不存在"一类的失败，Product 此时为 nil。
type FindProductResult struct {
	Status  int
	Errors  []string
	Product *ProductView
}

// DecreaseStockResult 携带库存扣减的业务状态码。
// Status == 409 表示预留无法兑现（例如查询之后库存被并发耗尽）。
type DecreaseStockResult struct {
	Status int
	Errors []string
}

// InventoryClient 是商品服务的出站端口。
// 两个操作的副作用都在远端，本地不持有任何状态。
// 传输层失败通过 error 返回，与业务状态码严格区分。
type InventoryClient interface {
	// FetchProduct 查询商品的价格与库存快照。
	FetchProduct(ctx context.Context, productID int64) (*FindProductResult, error)

	// DecreaseStock 请求商品服务为订单权威地扣减库存。
	// orderID 供商品服务做幂等去重。
	DecreaseStock(ctx context.Context, productID int64, orderID string) (*DecreaseStockResult, error)
}
