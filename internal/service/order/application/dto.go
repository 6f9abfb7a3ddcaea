// internal/service/order/application/dto.go
package application

// CreateOrderRequest 是接口层传入的下单请求。
// 字段的存在性/合法性校验由接口层完成，进入应用层的请求都是结构完整的。
type CreateOrderRequest struct {
	RequesterID string `json:"requesterId"`
	ProductID   int64  `json:"productId"`
	Quantity    int    `json:"quantity"`
}

// CreateOrderResponse 是下单流程的唯一出参。
// Status 沿用服务间共享的状态码词汇表：200 OK / 404 NOT_FOUND / 409 CONFLICT，
// 以及上游透传的 >=404 的错误码。业务拒绝通过它表达，而不是 error。
type CreateOrderResponse struct {
	OrderID string   `json:"orderId,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Status  int      `json:"status"`
}
