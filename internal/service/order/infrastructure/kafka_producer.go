// internal/service/order/infrastructure/kafka_producer.go
package infrastructure

import (
	"context"
	"encoding/json"

	"meridian/internal/pkg/mq"
	"meridian/internal/service/order/domain"

	"github.com/segmentio/kafka-go"
)

// OrderEventProducerAdapter 把订单领域事件发布到 Kafka。
// 实现了 domain.OrderEventProducer 接口。
type OrderEventProducerAdapter struct {
	writer *kafka.Writer
}

func NewOrderEventProducerAdapter(writer *kafka.Writer) *OrderEventProducerAdapter {
	return &OrderEventProducerAdapter{writer: writer}
}

func (p *OrderEventProducerAdapter) PublishOrderPlaced(ctx context.Context, event *domain.OrderPlaced) error {
	return p.publish(ctx, event.OrderID, "OrderPlaced", event)
}

func (p *OrderEventProducerAdapter) PublishOrderCancelled(ctx context.Context, event *domain.OrderCancelled) error {
	return p.publish(ctx, event.OrderID, "OrderCancelled", event)
}

// envelope 统一事件外层结构，消费方按 type 分发。
type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (p *OrderEventProducerAdapter) publish(ctx context.Context, key, eventType string, payload interface{}) error {
	value, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	// 以订单 ID 为 Key，同一订单的事件落在同一分区保持有序
	return mq.ProduceMessage(ctx, p.writer, []byte(key), value)
}
