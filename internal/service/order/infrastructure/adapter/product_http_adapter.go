// internal/service/order/infrastructure/adapter/product_http_adapter.go
package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"meridian/internal/pkg/httpclient"
	"meridian/internal/service/order/domain/port"
)

const (
	// ProductServiceName 是商品服务在注册中心里的逻辑服务名。
	ProductServiceName = "product-service"

	findProductPath   = "/product/find_one"
	decreaseStockPath = "/product/decrease_stock"
)

// ProductHTTPAdapter 实现了 port.InventoryClient 接口。
// 商品服务对业务失败也返回 HTTP 200，业务状态码在响应体里；
// 传输层的非 200 响应由 httpclient 转成 error 上抛。
type ProductHTTPAdapter struct {
	client *httpclient.Client
}

// NewProductHTTPAdapter 创建一个新的商品服务适配器。
func NewProductHTTPAdapter(client *httpclient.Client) *ProductHTTPAdapter {
	return &ProductHTTPAdapter{client: client}
}

// findOneResponse 是商品查询接口的线格式。
type findOneResponse struct {
	Status int      `json:"status"`
	Error  []string `json:"error"`
	Data   struct {
		ID    int64   `json:"id"`
		Price float64 `json:"price"`
		Stock int     `json:"stock"`
	} `json:"data"`
}

// decreaseStockRequest / decreaseStockResponse 是库存扣减接口的线格式。
type decreaseStockRequest struct {
	ID      int64  `json:"id"`
	OrderID string `json:"orderId"`
}

type decreaseStockResponse struct {
	Status int      `json:"status"`
	Error  []string `json:"error"`
}

// FetchProduct 查询商品信息。
func (a *ProductHTTPAdapter) FetchProduct(ctx context.Context, productID int64) (*port.FindProductResult, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(productID, 10))

	var resp findOneResponse
	if err := a.client.GetJSON(ctx, ProductServiceName, findProductPath, params, &resp); err != nil {
		return nil, err
	}

	result := &port.FindProductResult{Status: resp.Status, Errors: resp.Error}
	if resp.Status < http.StatusNotFound {
		result.Product = &port.ProductView{
			ID:    resp.Data.ID,
			Price: resp.Data.Price,
			Stock: resp.Data.Stock,
		}
	}
	return result, nil
}

// DecreaseStock 请求商品服务扣减库存。
func (a *ProductHTTPAdapter) DecreaseStock(ctx context.Context, productID int64, orderID string) (*port.DecreaseStockResult, error) {
	req := decreaseStockRequest{ID: productID, OrderID: orderID}

	var resp decreaseStockResponse
	if err := a.client.PostJSON(ctx, ProductServiceName, decreaseStockPath, req, &resp); err != nil {
		return nil, err
	}
	return &port.DecreaseStockResult{Status: resp.Status, Errors: resp.Error}, nil
}
