// internal/service/order/application/service.go
package application

import (
	"context"
	"net/http"
	"time"

	"meridian/internal/pkg/logger"
	"meridian/internal/service/order/domain"
	"meridian/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderApplicationService 负责编排跨 order-service 与 product-service 的下单流程：
// 查询商品 → 校验库存 → 本地落库 → 远端预留库存 → 冲突时补偿删除。
// 两个服务之间没有共享事务，一致性依靠补偿删除（saga）保证。
type OrderApplicationService struct {
	orderRepo domain.OrderRepository
	inventory port.InventoryClient
	producer  domain.OrderEventProducer
	tracer    trace.Tracer
}

func NewOrderApplicationService(orderRepo domain.OrderRepository, inventory port.InventoryClient, producer domain.OrderEventProducer, tracer trace.Tracer) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo: orderRepo,
		inventory: inventory,
		producer:  producer,
		tracer:    tracer,
	}
}

// CreateOrder 执行一次完整的下单流程，返回唯一的结构化结果。
//
// 业务拒绝（商品不存在、库存不足、预留冲突）通过 CreateOrderResponse 表达；
// 基础设施故障（传输失败、落库/删除失败）通过 error 返回，二者不可互换。
// 流程内没有任何重试：冲突是最终业务结论，故障立即上抛。
func (s *OrderApplicationService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product.id", req.ProductID),
		attribute.Int("order.quantity", req.Quantity),
		attribute.String("user.id", req.RequesterID),
	)

	// 1. 查询商品，拿到价格与库存快照
	found, err := s.inventory.FetchProduct(ctx, req.ProductID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product")
		return nil, errors.Wrapf(err, "fetch product %d", req.ProductID)
	}
	if found.Status >= http.StatusNotFound {
		span.AddEvent("Product not found upstream.")
		logger.Ctx(ctx).Info().Int64("product_id", req.ProductID).Int("status", found.Status).
			Msg("order rejected: product not found")
		return &CreateOrderResponse{Errors: []string{"Product not found"}, Status: found.Status}, nil
	}

	// 2. 库存预检。这只是基于快照的乐观检查，权威判定在第 4 步的远端扣减；
	//    通过预检并不能免去扣减，也不保证扣减一定成功。
	if found.Product.Stock < req.Quantity {
		span.AddEvent("Stock snapshot below requested quantity.")
		logger.Ctx(ctx).Info().Int64("product_id", req.ProductID).
			Int("stock", found.Product.Stock).Int("quantity", req.Quantity).
			Msg("order rejected: stock too low")
		return &CreateOrderResponse{Errors: []string{"Stock too low"}, Status: http.StatusConflict}, nil
	}

	// 3. 本地落库。返回即代表订单在本服务已持久化
	order, err := domain.NewOrder(found.Product.ID, req.RequesterID, found.Product.Price)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist order")
		return nil, errors.Wrap(err, "persist order")
	}
	span.AddEvent("Order persisted, awaiting stock reservation.")

	// 4. 远端权威预留。商品服务独自裁决冲突（例如第 1 步之后库存被并发耗尽）
	reserved, err := s.inventory.DecreaseStock(ctx, req.ProductID, order.ID)
	if err != nil {
		// 预留结果未知，不能在此补偿；作为基础设施故障上抛，
		// 残留的订单行交由外部对账处理。
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock reservation outcome unknown")
		return nil, errors.Wrapf(err, "decrease stock for order %s", order.ID)
	}

	if reserved.Status == http.StatusConflict {
		// 预留冲突：补偿删除刚创建的订单，仓储中不能留下未预留到库存的订单
		span.AddEvent("Stock reservation conflict. Compensating order deletion.")
		if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
			// 补偿本身失败是次生的基础设施故障，不能被冲突结论掩盖
			span.RecordError(err, trace.WithAttributes(attribute.Bool("compensation.failed", true)))
			span.SetStatus(codes.Error, "compensation delete failed")
			logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).
				Msg("CRITICAL: compensating delete failed, orphaned order requires reconciliation")
			return nil, errors.Wrapf(err, "compensating delete for order %s after stock conflict", order.ID)
		}

		logger.Ctx(ctx).Info().Str("order_id", order.ID).Strs("upstream_errors", reserved.Errors).
			Msg("order compensated: stock reservation conflict")
		s.publishCancelled(ctx, order, reserved.Errors)
		return &CreateOrderResponse{Errors: reserved.Errors, Status: http.StatusConflict}, nil
	}

	// 非冲突即成功，订单成为终态。远端预留已是权威结论，
	// 状态落库只是簿记，失败不改变下单结果。
	if err := order.Confirm(); err == nil {
		if err := s.orderRepo.UpdateState(ctx, order.ID, order.State); err != nil {
			span.RecordError(err)
			logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("failed to mark order as confirmed")
		}
	}
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Int64("product_id", order.ProductID).
		Msg("order confirmed: stock reserved")
	span.AddEvent("Stock reserved. Order confirmed.")
	s.publishPlaced(ctx, order)

	return &CreateOrderResponse{OrderID: order.ID, Status: http.StatusOK}, nil
}

// GetOrder 按 ID 查询订单。
// 订单不存在返回 domain.ErrOrderNotFound。
func (s *OrderApplicationService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	return s.orderRepo.FindByID(ctx, id)
}

func (s *OrderApplicationService) publishPlaced(ctx context.Context, order *domain.Order) {
	if s.producer == nil {
		return
	}
	event := &domain.OrderPlaced{
		OrderID:     order.ID,
		RequesterID: order.RequesterID,
		ProductID:   order.ProductID,
		Price:       order.Price,
		PlacedAt:    time.Now(),
	}
	if err := s.producer.PublishOrderPlaced(ctx, event); err != nil {
		// 旁路通知失败不影响下单结果
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish OrderPlaced event")
	}
}

func (s *OrderApplicationService) publishCancelled(ctx context.Context, order *domain.Order, reasons []string) {
	if s.producer == nil {
		return
	}
	reason := "stock reservation conflict"
	if len(reasons) > 0 {
		reason = reasons[0]
	}
	event := &domain.OrderCancelled{
		OrderID:     order.ID,
		RequesterID: order.RequesterID,
		ProductID:   order.ProductID,
		Reason:      reason,
		CancelledAt: time.Now(),
	}
	if err := s.producer.PublishOrderCancelled(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish OrderCancelled event")
	}
}
