// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"meridian/internal/service/order/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 持久化一个新订单。ID 在此分配，写入成功后回填到领域对象上。
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	model := FromDomainOrder(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		order.ID = ""
		return err
	}
	return nil
}

// Delete 按 ID 删除订单行。
// 删除不存在的行不是错误：补偿路径只要求删除后该行不存在。
func (r *GormOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&OrderModel{}).Error
}

// FindByID 使用 GORM 从数据库中查找订单。
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return ToDomainOrder(&model), nil
}

// UpdateState 只更新状态字段。
func (r *GormOrderRepository) UpdateState(ctx context.Context, id string, state domain.State) error {
	return r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ?", id).
		Update("state", string(state)).Error
}
