package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/matrix_backend/controllers"
	"github.com/HSouheill/matrix_backend/middleware"
	"github.com/HSouheill/matrix_backend/models"
)

// RegisterMemberRoutes sets up routes for any authenticated member
func RegisterMemberRoutes(e *echo.Echo, ctrl Controllers, jwtSecret string) {
	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware(jwtSecret))
	api.Use(middleware.RequireUserType(models.MemberTypeMember, models.MemberTypeStockist, models.MemberTypeAdmin))

	members := api.Group("/members")
	members.GET("/me", ctrl.Member.GetMe)
	members.GET("/me/referrals", ctrl.Member.GetReferrals)
	members.GET("/me/referral/qrcode", ctrl.Member.GetReferralQRCode)
	members.POST("/activate", ctrl.Member.Activate)

	matrix := api.Group("/matrix")
	matrix.GET("/progress", ctrl.Matrix.GetProgress)
	matrix.GET("/dashboard", ctrl.Matrix.GetDashboard)

	api.GET("/commissions", ctrl.Commission.ListMine)
}

// RegisterStockistRoutes sets up routes for stockists reselling PINs
func RegisterStockistRoutes(e *echo.Echo, pinController *controllers.PinController, jwtSecret string) {
	stockist := e.Group("/api/stockist")
	stockist.Use(middleware.JWTMiddleware(jwtSecret))
	stockist.Use(middleware.RequireUserType(models.MemberTypeStockist))

	stockist.GET("/pins", pinController.ListStockist)
}
