package main

import (
	"github.com/gin-gonic/gin"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/interfaces/http/handlers"
	"property-registry.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler           *handlers.AuthHandler
	propertyHandler       *handlers.PropertyHandler
	adminHandler          *handlers.AdminHandler
	superAdminHandler     *handlers.SuperAdminHandler
	walletHandler         *handlers.WalletHandler
	txJournalHandler      *handlers.TxJournalHandler
	authMiddleware        gin.HandlerFunc
	idempotencyMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	operator := []gin.HandlerFunc{d.authMiddleware, middleware.RequireRole(entities.OperatorRole)}
	write := chain(operator, d.idempotencyMiddleware)

	v1 := r.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
		}

		// Property views (public)
		v1.GET("/marketplace", d.propertyHandler.Marketplace)
		v1.GET("/dashboard", d.propertyHandler.Dashboard)
		properties := v1.Group("/properties")
		{
			properties.GET("", d.propertyHandler.ListProperties)
			properties.GET("/:id", d.propertyHandler.GetProperty)
			properties.GET("/:id/qr", d.propertyHandler.BuyLink)
			properties.POST("", chain(write, d.propertyHandler.RegisterProperty)...)
			properties.POST("/:id/buy", chain(write, d.propertyHandler.BuyProperty)...)
		}

		// Wallet session
		wallet := v1.Group("/wallet")
		{
			wallet.GET("", d.walletHandler.State)
			wallet.GET("/balance", d.walletHandler.Balance)
			wallet.POST("/connect", chain(operator, d.walletHandler.Connect)...)
			wallet.POST("/switch", chain(operator, d.walletHandler.Switch)...)
			wallet.POST("/disconnect", chain(operator, d.walletHandler.Disconnect)...)
		}

		// Admin panel. Contract roles are checked per call against the
		// active wallet account.
		admin := v1.Group("/admin")
		{
			admin.GET("/roles", d.adminHandler.Roles)
			admin.GET("/properties/pending", d.adminHandler.ListPending)
			admin.GET("/earnings", d.adminHandler.Earnings)
			admin.POST("/properties/:id/approve", chain(write, d.adminHandler.ApproveProperty)...)
			admin.POST("/properties/:id/reject", chain(write, d.adminHandler.RejectProperty)...)
			admin.POST("/earnings/withdraw", chain(write, d.adminHandler.Withdraw)...)
		}

		superAdmin := v1.Group("/super-admin")
		superAdmin.Use(write...)
		{
			superAdmin.POST("/users", d.superAdminHandler.RegisterUser)
			superAdmin.POST("/admins", d.superAdminHandler.AddAdmin)
			superAdmin.POST("/admins/remove", d.superAdminHandler.RemoveAdmin)
			superAdmin.POST("/transfer", d.superAdminHandler.ChangeSuperAdmin)
		}

		// Transaction journal (operator only)
		transactions := v1.Group("/transactions")
		transactions.Use(operator...)
		{
			transactions.GET("", d.txJournalHandler.ListTransactions)
			transactions.GET("/:id", d.txJournalHandler.GetTransaction)
		}
	}
}

// chain returns a fresh handler slice so route groups never share backing arrays.
func chain(base []gin.HandlerFunc, h ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(base)+len(h))
	out = append(out, base...)
	return append(out, h...)
}
