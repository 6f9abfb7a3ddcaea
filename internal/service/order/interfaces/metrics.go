// internal/service/order/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// orderOutcomes 按终态统计下单结果，暴露在 /metrics。
// outcome 取值: ok / product_not_found / conflict / fault
var orderOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_creation_outcomes_total",
		Help: "Terminal outcomes of order creation requests.",
	},
	[]string{"outcome"},
)
