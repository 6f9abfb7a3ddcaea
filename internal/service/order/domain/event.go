// internal/service/order/domain/event.go
package domain

import (
	"context"
	"time"
)

// OrderPlaced 是订单成功创建并完成库存预留后发布的事件。
type OrderPlaced struct {
	OrderID     string    `json:"orderId"`
	RequesterID string    `json:"requesterId"`
	ProductID   int64     `json:"productId"`
	Price       float64   `json:"price"`
	PlacedAt    time.Time `json:"placedAt"`
}

// OrderCancelled 是订单因库存预留冲突被补偿删除后发布的事件。
type OrderCancelled struct {
	OrderID     string    `json:"orderId"`
	RequesterID string    `json:"requesterId"`
	ProductID   int64     `json:"productId"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// OrderEventProducer 是订单领域事件的出站端口。
// 事件发布是旁路通知：发布失败记录日志即可，绝不影响下单结果。
type OrderEventProducer interface {
	PublishOrderPlaced(ctx context.Context, event *OrderPlaced) error
	PublishOrderCancelled(ctx context.Context, event *OrderCancelled) error
}
