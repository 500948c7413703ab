package public

import "github.com/shudian-next/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：该处理器用于结算、支付回调与游客/用户订单查询
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
