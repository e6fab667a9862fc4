package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/controllers"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Tracking *controllers.TrackingController
	Admin    *controllers.AdminController
	Auth     *controllers.AuthController
}

// Guards are the per-group middleware.
type Guards struct {
	Session   gin.HandlerFunc
	LoginRate gin.HandlerFunc
}

// RegisterTrackingRoutes sets up the public lookup and the admin API.
func RegisterTrackingRoutes(r *gin.Engine, c Controllers, g Guards) {
	tracking := r.Group("/tracking")
	tracking.POST("/check", c.Tracking.CheckTracking)
	tracking.GET("/:tracking_id", c.Tracking.GetTracking)
	tracking.GET("/:tracking_id/exists", c.Tracking.TrackingExists)

	r.POST("/admin/login", g.LoginRate, c.Auth.Login)
	r.POST("/admin/logout", c.Auth.Logout)

	admin := r.Group("/admin")
	admin.Use(g.Session)
	admin.GET("/session", c.Auth.Me)

	admin.GET("/shipments", c.Admin.ListShipments)
	admin.POST("/shipments", c.Admin.CreateShipment)
	admin.POST("/shipments/refresh", c.Admin.RefreshShipments)
	admin.GET("/shipments/:tracking_id", c.Admin.GetShipment)
	admin.PUT("/shipments/:tracking_id", c.Admin.EditShipment)
	admin.DELETE("/shipments/:tracking_id", c.Admin.DeleteShipment)
	admin.POST("/shipments/:tracking_id/updates", c.Admin.AppendUpdate)
}
