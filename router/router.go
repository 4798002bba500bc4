// Package router assembles the gin engine: middleware stack and route table.
package router

import (
	"github.com/CuentaClara/cuenta-clara-backend/config"
	"github.com/CuentaClara/cuenta-clara-backend/handlers"
	"github.com/CuentaClara/cuenta-clara-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds everything the route table needs.
type Dependencies struct {
	Config            *config.Config
	HealthHandler     *handlers.HealthHandler
	GroupHandler      *handlers.GroupHandler
	ExpenseHandler    *handlers.ExpenseHandler
	SettlementHandler *handlers.SettlementHandler
	PaymentHandler    *handlers.PaymentHandler
}

// SetupRouter configures and returns the main gin engine with all routes
// defined. The webhook route stays outside the auth group: the gateway
// authenticates with its HMAC signature, not a bearer token.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.Server.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/payments/webhook", deps.PaymentHandler.WebhookHandler)

		authRoutes := v1.Group("")
		authRoutes.Use(middleware.AuthMiddleware(&deps.Config.Server))
		{
			groupRoutes := authRoutes.Group("/groups")
			{
				groupRoutes.POST("", deps.GroupHandler.CreateGroupHandler)
				groupRoutes.GET("", deps.GroupHandler.ListGroupsHandler)
				groupRoutes.GET("/:id", deps.GroupHandler.GetGroupHandler)
				groupRoutes.PUT("/:id", deps.GroupHandler.UpdateGroupHandler)
				groupRoutes.DELETE("/:id", deps.GroupHandler.CloseGroupHandler)

				memberRoutes := groupRoutes.Group("/:id/members")
				{
					memberRoutes.POST("", deps.GroupHandler.AddMemberHandler)
					memberRoutes.POST("/quick", deps.GroupHandler.QuickAddMemberHandler)
					memberRoutes.DELETE("/:memberId", deps.GroupHandler.RemoveMemberHandler)
				}

				expenseRoutes := groupRoutes.Group("/:id/expenses")
				{
					expenseRoutes.POST("", deps.ExpenseHandler.CreateExpenseHandler)
					expenseRoutes.GET("", deps.ExpenseHandler.ListExpensesHandler)
					expenseRoutes.GET("/:expenseId", deps.ExpenseHandler.GetExpenseHandler)
					expenseRoutes.PUT("/:expenseId", deps.ExpenseHandler.UpdateExpenseHandler)
					expenseRoutes.DELETE("/:expenseId", deps.ExpenseHandler.DeleteExpenseHandler)
				}

				groupRoutes.GET("/:id/balances", deps.SettlementHandler.GetGroupBalancesHandler)
				groupRoutes.GET("/:id/payments", deps.PaymentHandler.ListGroupPaymentsHandler)
			}

			paymentRoutes := authRoutes.Group("/payments")
			{
				paymentRoutes.POST("/create-preference", deps.PaymentHandler.CreatePreferenceHandler)
				paymentRoutes.GET("/:id/status", deps.PaymentHandler.GetPaymentStatusHandler)
			}
		}
	}

	return r
}
