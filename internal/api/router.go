package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/handlers"
	"github.com/dmorenov/cajadesk/internal/notifications"
	"github.com/dmorenov/cajadesk/internal/realtime"
	"github.com/dmorenov/cajadesk/internal/services"
)

// Dependencies carries the wired engine services the router exposes.
type Dependencies struct {
	DB                 *gorm.DB
	Ledger             *notifications.Ledger
	NotificationConfig *notifications.ConfigService
	RealtimeConfig     *realtime.ConfigService
	Visibility         *realtime.Visibility
	Requests           *services.RequestService
	Users              *services.UserService
	Printers           *services.PrinterService
}

// NewRouter builds the Gin engine and registers all console routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("notification ledger must be provided")
	}
	if deps.RealtimeConfig == nil || deps.NotificationConfig == nil {
		return nil, fmt.Errorf("config services must be provided")
	}
	if deps.Visibility == nil {
		return nil, fmt.Errorf("visibility monitor must be provided")
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", handlers.Health(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	notificationHandler := handlers.NewNotificationHandler(deps.Ledger, deps.NotificationConfig)
	notificationsGroup := api.Group("/notifications")
	{
		notificationsGroup.GET("", notificationHandler.List)
		notificationsGroup.POST("", notificationHandler.Create)
		notificationsGroup.GET("/unread-count", notificationHandler.UnreadCount)
		notificationsGroup.POST("/read-all", notificationHandler.MarkAllRead)
		notificationsGroup.POST("/:id/read", notificationHandler.MarkRead)
		notificationsGroup.DELETE("/:id", notificationHandler.Delete)
		notificationsGroup.DELETE("", notificationHandler.Clear)
		notificationsGroup.GET("/config", notificationHandler.GetConfig)
		notificationsGroup.PUT("/config", notificationHandler.UpdateConfig)
	}

	realtimeHandler := handlers.NewRealtimeHandler(deps.RealtimeConfig, deps.Visibility)
	realtimeGroup := api.Group("/realtime")
	{
		realtimeGroup.GET("/config", realtimeHandler.GetConfig)
		realtimeGroup.PUT("/config", realtimeHandler.UpdateConfig)
		realtimeGroup.POST("/visibility", realtimeHandler.ReportVisibility)
	}

	if deps.Requests != nil {
		requestHandler := handlers.NewRequestHandler(deps.Requests)
		requestsGroup := api.Group("/requests")
		{
			requestsGroup.GET("", requestHandler.List)
			requestsGroup.POST("", requestHandler.Create)
			requestsGroup.GET("/:id", requestHandler.Get)
			requestsGroup.POST("/:id/approve", requestHandler.Approve)
			requestsGroup.POST("/:id/reject", requestHandler.Reject)
		}
	}

	if deps.Users != nil {
		userHandler := handlers.NewUserHandler(deps.Users)
		usersGroup := api.Group("/users")
		{
			usersGroup.GET("", userHandler.List)
			usersGroup.POST("", userHandler.Create)
			usersGroup.PUT("/:id", userHandler.Update)
			usersGroup.DELETE("/:id", userHandler.Delete)
		}
	}

	if deps.Printers != nil {
		printerHandler := handlers.NewPrinterHandler(deps.Printers)
		printersGroup := api.Group("/printers")
		{
			printersGroup.GET("", printerHandler.List)
			printersGroup.POST("", printerHandler.Create)
			printersGroup.POST("/:id/status", printerHandler.SetStatus)
			printersGroup.DELETE("/:id", printerHandler.Delete)
		}
	}

	return r, nil
}
