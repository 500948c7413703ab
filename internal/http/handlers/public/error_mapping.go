package public

import (
	"errors"

	"github.com/shudian-next/internal/http/handlers/shared"
	"github.com/shudian-next/internal/http/response"
	"github.com/shudian-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCheckoutItem, code: response.CodeBadRequest, msg: "结算商品无效"},
	{target: service.ErrBookNotFound, code: response.CodeBadRequest, msg: "图书不存在"},
	{target: service.ErrGuestPasswordRequired, code: response.CodeBadRequest, msg: "游客订单需要设置订单密码"},
	{target: service.ErrStagingUnavailable, code: response.CodeInternal, msg: "结算服务暂不可用"},
}

var paymentCallbackErrorRules = []mappedHandlerError{
	{target: service.ErrDraftNotFound, code: response.CodeNotFound, msg: "结算草稿不存在或已过期"},
	{target: service.ErrAmountMismatch, code: response.CodeBadRequest, msg: "支付金额与订单金额不一致"},
	{target: service.ErrPaymentDuplicate, code: response.CodeConflict, msg: "该支付已处理"},
	{target: service.ErrBookNotFound, code: response.CodeBadRequest, msg: "图书不存在"},
	{target: service.ErrStagingUnavailable, code: response.CodeInternal, msg: "结算服务暂不可用"},
}

var orderLookupErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "订单不存在"},
	{target: service.ErrPasswordIncorrect, code: response.CodeUnauthorized, msg: "订单密码不正确"},
}

var orderActionErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "订单不存在"},
	{target: service.ErrTransitionInvalid, code: response.CodeBadRequest, msg: "当前状态不允许该操作"},
	{target: service.ErrTransitionDuplicate, code: response.CodeConflict, msg: "订单已处于目标状态"},
}
