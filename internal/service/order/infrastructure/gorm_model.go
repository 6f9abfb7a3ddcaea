// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"meridian/internal/service/order/domain"
)

// OrderModel 对应数据库中的 orders 表。
type OrderModel struct {
	ID          string  `gorm:"primaryKey;size:36"`
	ProductID   int64   `gorm:"index"`
	RequesterID string  `gorm:"size:64;index"`
	Price       float64 `gorm:"type:decimal(10,2)"`
	State       string  `gorm:"size:16"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomainOrder 将数据库模型转换为领域模型。
func ToDomainOrder(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:          m.ID,
		ProductID:   m.ProductID,
		RequesterID: m.RequesterID,
		Price:       m.Price,
		State:       domain.State(m.State),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomainOrder 将领域模型转换为数据库模型。
func FromDomainOrder(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:          o.ID,
		ProductID:   o.ProductID,
		RequesterID: o.RequesterID,
		Price:       o.Price,
		State:       string(o.State),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
