// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"
)

// ErrOrderNotFound 表示订单在仓储中不存在。
var ErrOrderNotFound = errors.New("order not found")

// Order 是订单聚合的根实体。
// Price 是下单时刻商品价格的快照，订单确认后不再变化。
type Order struct {
	ID          string
	ProductID   int64
	RequesterID string
	Price       float64
	State       State
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder 创建一个处于预占窗口内的新订单。
// ID 由仓储在持久化时分配。
func NewOrder(productID int64, requesterID string, price float64) (*Order, error) {
	if productID <= 0 || requesterID == "" {
		return nil, errors.New("cannot create order with empty required fields")
	}
	now := time.Now()
	return &Order{
		ProductID:   productID,
		RequesterID: requesterID,
		Price:       price,
		State:       StateCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Confirm 在库存预留成功后将订单置为终态。
// 只有处于预占窗口内的订单可以被确认。
func (o *Order) Confirm() error {
	if o.State != StateCreated {
		return errors.New("only orders awaiting stock reservation can be confirmed")
	}
	o.State = StateConfirmed
	o.UpdatedAt = time.Now()
	return nil
}
