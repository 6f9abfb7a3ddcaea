// internal/pkg/idempotency/middleware.go
package idempotency

import (
	"bytes"
	"encoding/json"
	"net/http"

	"meridian/internal/pkg/logger"
)

const HeaderKey = "Idempotency-Key"

// cachedResponse 是缓存里保存的响应快照。
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Middleware 对带有 Idempotency-Key 请求头的请求做回放保护：
// 同一个 Key 的重复请求直接返回上一次的响应，不会再次触发下单流程。
// 只缓存成功(200)的响应 —— 业务拒绝本身不产生任何残留状态，
// 重放会自然得到相同结果；瞬时故障则不应被缓存固化。
func Middleware(cache Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if raw, ok, err := cache.Get(ctx, key); err != nil {
				// 缓存不可用时放行请求，由幂等键的调用方兜底
				logger.Ctx(ctx).Warn().Err(err).Msg("idempotency cache lookup failed, passing request through")
			} else if ok {
				var cached cachedResponse
				if err := json.Unmarshal(raw, &cached); err == nil {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotent-Replay", "true")
					w.WriteHeader(cached.Status)
					w.Write(cached.Body)
					return
				}
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				raw, err := json.Marshal(cachedResponse{Status: rec.status, Body: rec.body.Bytes()})
				if err == nil {
					if err := cache.Put(ctx, key, raw); err != nil {
						logger.Ctx(ctx).Warn().Err(err).Msg("failed to store idempotent response")
					}
				}
			}
		})
	}
}

// recorder 在透传响应的同时记录状态码和响应体。
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
