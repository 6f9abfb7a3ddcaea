// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"meridian/internal/pkg/logger"
	"meridian/internal/service/order/application"
	"meridian/internal/service/order/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "order-service"

// OrderHandler 封装了 order 服务的 HTTP 处理器。
// 纯适配：解析请求、调用应用服务、编码结果，不包含任何决策逻辑。
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
// createOrder 路由可以由调用方再包一层幂等中间件。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux, middleware func(http.Handler) http.Handler) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	var create http.Handler = http.HandlerFunc(h.createOrderHandler)
	if middleware != nil {
		create = middleware(create)
	}
	mux.Handle("POST /orders", create)
	mux.HandleFunc("GET /orders/{id}", h.getOrderHandler)
}

func (h *OrderHandler) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "order-service.CreateOrderHandler")
	defer span.End()

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// 形状校验在边界完成，进入编排层的请求都是合法的
	if req.RequesterID == "" || req.ProductID <= 0 || req.Quantity <= 0 {
		http.Error(w, "requesterId, productId and a positive quantity are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		// 基础设施故障统一映射为一个通用失败响应，不伪装成业务结果
		orderOutcomes.WithLabelValues("fault").Inc()
		logger.Ctx(ctx).Error().Err(err).Msg("order creation failed with infrastructure fault")
		http.Error(w, "order creation failed", http.StatusInternalServerError)
		return
	}

	switch {
	case resp.Status == http.StatusOK:
		orderOutcomes.WithLabelValues("ok").Inc()
	case resp.Status == http.StatusConflict:
		orderOutcomes.WithLabelValues("conflict").Inc()
	default:
		orderOutcomes.WithLabelValues("product_not_found").Inc()
	}

	writeJSON(w, resp.Status, resp)
}

func (h *OrderHandler) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "order-service.GetOrderHandler")
	defer span.End()

	order, err := h.service.GetOrder(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Msg("failed to load order")
		http.Error(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orderId":     order.ID,
		"productId":   order.ProductID,
		"requesterId": order.RequesterID,
		"price":       order.Price,
		"state":       order.State,
		"createdAt":   order.CreatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
