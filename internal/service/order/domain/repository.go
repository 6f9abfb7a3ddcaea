// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Create 持久化一个新订单并为其分配 ID。返回即代表本地已落库。
	Create(ctx context.Context, order *Order) error

	// Delete 按 ID 删除订单，用于库存预留冲突后的补偿。
	Delete(ctx context.Context, id string) error

	// FindByID 根据 ID 查找一个订单聚合。
	FindByID(ctx context.Context, id string) (*Order, error)

	// UpdateState 更新订单状态字段，用于预留成功后的确认。
	UpdateState(ctx context.Context, id string, state State) error
}
