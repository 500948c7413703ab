package admin

import (
	"github.com/shudian-next/internal/constants"
	"github.com/shudian-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpdateFeePolicyRequest 运费策略更新请求
type UpdateFeePolicyRequest struct {
	FreeShippingThreshold string `json:"free_shipping_threshold" binding:"required"`
	FlatFee               string `json:"flat_fee" binding:"required"`
}

// AdminUpdateFeePolicy 管理端更新运费策略
func (h *Handler) AdminUpdateFeePolicy(c *gin.Context) {
	var req UpdateFeePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	threshold, err := decimal.NewFromString(req.FreeShippingThreshold)
	if err != nil {
		respondError(c, response.CodeBadRequest, "包邮门槛格式错误", err)
		return
	}
	flatFee, err := decimal.NewFromString(req.FlatFee)
	if err != nil {
		respondError(c, response.CodeBadRequest, "运费格式错误", err)
		return
	}

	policy, err := h.SettingService.UpdateFeePolicy(threshold, flatFee)
	if err != nil {
		respondError(c, response.CodeInternal, "更新运费策略失败", err)
		return
	}
	response.Success(c, gin.H{
		"free_shipping_threshold": policy.FreeShippingThreshold.String(),
		"flat_fee":                policy.FlatFee.String(),
	})
}

// AdminGetFeePolicy 管理端查看当前运费策略
func (h *Handler) AdminGetFeePolicy(c *gin.Context) {
	value, err := h.SettingService.GetByKey(constants.SettingKeyFeePolicy)
	if err != nil {
		respondError(c, response.CodeInternal, "查询运费策略失败", err)
		return
	}
	response.Success(c, value)
}
