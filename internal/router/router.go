package router

import (
	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/http/handlers/admin"
	"github.com/shudian-next/internal/http/handlers/public"
	"github.com/shudian-next/internal/logger"
	"github.com/shudian-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 装配路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	publicHandler := public.New(c)
	adminHandler := admin.New(c)

	apiV1 := r.Group("/api/v1")
	{
		checkout := apiV1.Group("/checkout")
		{
			checkout.POST("/preview", publicHandler.PreviewCheckout)
			checkout.POST("", publicHandler.SubmitCheckout)
		}

		apiV1.POST("/payment/callback", publicHandler.PaymentCallback)

		orders := apiV1.Group("/orders")
		{
			orders.POST("/guest-lookup", publicHandler.GuestOrderLookup)
			orders.GET("", publicHandler.ListUserOrders)
			orders.GET("/:id", publicHandler.GetUserOrder)
			orders.POST("/:id/cancel", publicHandler.CancelOrder)
			orders.POST("/:id/refund", publicHandler.RequestRefund)
		}

		adminGroup := apiV1.Group("/admin")
		{
			adminGroup.POST("/login", adminHandler.Login)

			authorized := adminGroup.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.PUT("/orders/:id/status", adminHandler.AdminUpdateOrderStatus)
				authorized.PUT("/orders/:id/refund/resolve", adminHandler.AdminResolveRefund)
				authorized.PUT("/orders/:id/shipment-info", adminHandler.AdminUpdateShipmentInfo)
				authorized.GET("/settings/fee-policy", adminHandler.AdminGetFeePolicy)
				authorized.PUT("/settings/fee-policy", adminHandler.AdminUpdateFeePolicy)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
