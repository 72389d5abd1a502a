package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"serenity/handlers"
	"serenity/middleware"
)

// RegisterRoutes wires all endpoints onto the engine.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthCheck)

	api := r.Group("/api")
	{
		appointments := api.Group("/appointments")
		{
			appointments.GET("", hb.Appointments.List)
			appointments.GET("/:id", hb.Appointments.Get)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", hb.Bookings.List)
			bookings.GET("/:id", hb.Bookings.Get)
			bookings.POST("", hb.Bookings.Create)
			bookings.DELETE("/:id", hb.Bookings.Cancel)
		}

		blogs := api.Group("/blogs")
		{
			blogs.GET("", hb.Blogs.List)
			blogs.GET("/:slug", hb.Blogs.Get)
		}

		admin := api.Group("/admin", middleware.AdminAuthMiddleware())
		{
			admin.POST("/appointments", hb.Appointments.Create)
			admin.PUT("/appointments/:id", hb.Appointments.Update)
			admin.DELETE("/appointments/:id", hb.Appointments.Delete)

			admin.PUT("/bookings/:id", hb.Bookings.Update)

			admin.POST("/blogs", hb.Blogs.Create)
			admin.PUT("/blogs/:id", hb.Blogs.Update)
			admin.DELETE("/blogs/:id", hb.Blogs.Delete)

			admin.GET("/rag-systems", hb.Admin.ListRagSystems)
			admin.POST("/rag-systems", hb.Admin.CreateRagSystem)
			admin.GET("/rag-systems/:id", hb.Admin.GetRagSystem)
			admin.DELETE("/rag-systems/:id", hb.Admin.DeleteRagSystem)
			admin.GET("/rag-systems/:id/conversations", hb.Admin.ListConversations)
			admin.POST("/rag-systems/:id/conversations", hb.Admin.CreateConversation)
			admin.GET("/rag-systems/:id/usage", hb.Admin.ListUsage)
			admin.POST("/rag-systems/:id/usage", hb.Admin.RecordUsage)
			admin.GET("/conversations/:id/messages", hb.Admin.ListMessages)
			admin.POST("/conversations/:id/messages", hb.Admin.AppendMessage)

			admin.GET("/payments", hb.Admin.ListPayments)
			admin.POST("/payments", hb.Admin.CreatePayment)
			admin.GET("/payments/:id", hb.Admin.GetPayment)
			admin.PATCH("/payments/:id/status", hb.Admin.UpdatePaymentStatus)

			admin.GET("/audit-logs", hb.Admin.ListAuditLogs)
		}
	}
}
