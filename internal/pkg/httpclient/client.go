// internal/pkg/httpclient/client.go

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// ServiceResolver 将逻辑服务名解析为一个具体的 "ip:port" 地址。
// 生产环境由 Nacos 客户端实现，测试中可以用固定地址替代。
type ServiceResolver interface {
	Resolve(serviceName string) (string, error)
}

// Client 是一个可追踪的、可注入的 HTTP 客户端。
// 每次调用都会创建 Client 类型的 Span 并注入链路传播头。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Resolver   ServiceResolver
}

// NewClient 创建一个新的客户端实例。
// 不设置全局 Timeout，超时完全受控于每次请求传入的 context。
func NewClient(tracer trace.Tracer, resolver ServiceResolver) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
		Resolver:   resolver,
	}
}

// GetJSON 调用下游服务的 GET 接口，并将 JSON 响应体解码到 out。
// 下游返回非 200 的 HTTP 状态码被视为传输层错误。
func (c *Client) GetJSON(ctx context.Context, serviceName, path string, params url.Values, out interface{}) error {
	return c.callJSON(ctx, http.MethodGet, serviceName, path, params, nil, out)
}

// PostJSON 调用下游服务的 POST 接口，请求体为 body 的 JSON 编码。
func (c *Client) PostJSON(ctx context.Context, serviceName, path string, body, out interface{}) error {
	return c.callJSON(ctx, http.MethodPost, serviceName, path, nil, body, out)
}

func (c *Client) callJSON(ctx context.Context, method, serviceName, path string, params url.Values, body, out interface{}) error {
	addr, err := c.Resolver.Resolve(serviceName)
	if err != nil {
		return err
	}

	ctx, span := c.Tracer.Start(ctx, fmt.Sprintf("call-%s", serviceName), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	downstreamURL := url.URL{Scheme: "http", Host: addr, Path: path}
	if params != nil {
		downstreamURL.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, downstreamURL.String(), reqBody)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", downstreamURL.String()),
		attribute.String("http.method", method),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("service %s returned status %s", serviceName, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to decode downstream response")
			return fmt.Errorf("failed to decode response from %s: %w", serviceName, err)
		}
	}
	return nil
}
