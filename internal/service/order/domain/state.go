// internal/service/order/domain/state.go
package domain

// State 定义了订单的生命周期状态。
// 订单行在 CREATED 与库存预留结果之间短暂存在；预留冲突时整行被删除，
// 因此仓储中永远不会留下一条没有真正预留到库存的订单。
type State string

const (
	StateCreated   State = "CREATED"   // 已持久化，等待远端库存预留结果（中间状态）
	StateConfirmed State = "CONFIRMED" // 库存预留成功，订单为终态
)
