package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/matrix_backend/controllers"
)

// RegisterAuthRoutes sets up authentication and other public routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController, matrixController *controllers.MatrixController) {
	e.POST("/api/auth/register", authController.Register)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/refresh", authController.Refresh)

	// Schedule and calculator are public so prospects can see the plan
	e.GET("/api/matrix/schedule", matrixController.GetSchedule)
	e.POST("/api/matrix/preview", matrixController.Preview)
}
