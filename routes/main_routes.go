package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/matrix_backend/controllers"
)

// Controllers groups the handlers mounted by SetupRoutes
type Controllers struct {
	Auth       *controllers.AuthController
	Member     *controllers.MemberController
	Matrix     *controllers.MatrixController
	Commission *controllers.CommissionController
	Pin        *controllers.PinController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, ctrl Controllers, jwtSecret string) {
	RegisterAuthRoutes(e, ctrl.Auth, ctrl.Matrix)
	RegisterMemberRoutes(e, ctrl, jwtSecret)
	RegisterStockistRoutes(e, ctrl.Pin, jwtSecret)
	RegisterAdminRoutes(e, ctrl, jwtSecret)
}
