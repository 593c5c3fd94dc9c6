package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/matrix_backend/middleware"
	"github.com/HSouheill/matrix_backend/models"
)

// RegisterAdminRoutes sets up all admin-related routes
func RegisterAdminRoutes(e *echo.Echo, ctrl Controllers, jwtSecret string) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware(jwtSecret))
	admin.Use(middleware.RequireUserType(models.MemberTypeAdmin))

	admin.PUT("/matrix/schedule", ctrl.Matrix.UpdateSchedule)

	admin.GET("/members/:id/progress", ctrl.Matrix.GetMemberProgress)
	admin.POST("/members/:id/commissions/sync", ctrl.Matrix.SyncCommissions)

	admin.GET("/commissions", ctrl.Commission.ListAll)
	admin.POST("/commissions/:id/approve", ctrl.Commission.Approve)
	admin.POST("/commissions/:id/reject", ctrl.Commission.Reject)
	admin.POST("/commissions/:id/pay", ctrl.Commission.Pay)

	admin.POST("/pins", ctrl.Pin.Generate)
	admin.GET("/pins", ctrl.Pin.ListAll)
}
