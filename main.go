package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/matrix_backend/config"
	"github.com/HSouheill/matrix_backend/controllers"
	"github.com/HSouheill/matrix_backend/middleware"
	"github.com/HSouheill/matrix_backend/repositories"
	"github.com/HSouheill/matrix_backend/routes"
	"github.com/HSouheill/matrix_backend/services"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	jwtSecret, err := middleware.GetJWTSecret()
	if err != nil {
		log.Fatal(err)
	}

	schedule, err := config.LoadCommissionSchedule()
	if err != nil {
		log.Fatalf("Invalid commission schedule: %v", err)
	}
	log.Printf("Default commission schedule has %d levels", len(schedule))

	// Connect to Redis; nil disables the progress cache
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Initialize repositories
	memberRepo := repositories.NewMemberRepository(client)
	pinRepo := repositories.NewPinRepository(client)
	commissionRepo := repositories.NewCommissionRepository(client)
	settingsRepo := repositories.NewSettingsRepository(client)

	// Initialize services
	scheduleService := services.NewScheduleService(settingsRepo, schedule)
	progressCache := services.NewProgressCache(redisClient, config.ProgressCacheTTL())
	matrixService := services.NewMatrixService(scheduleService, memberRepo, commissionRepo, progressCache)
	memberService := services.NewMemberService(memberRepo, pinRepo, middleware.NewTokenIssuer(jwtSecret), matrixService).
		WithAttemptLimiter(services.NewPinAttemptLimiter(redisClient))
	commissionService := services.NewCommissionService(commissionRepo, memberRepo, services.NewMailerFromEnv())
	pinService := services.NewPinService(pinRepo, memberRepo)

	if email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"); email != "" && password != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		admin, created, err := memberService.EnsureAdmin(ctx, email, password)
		cancel()
		switch {
		case err != nil:
			log.Printf("Warning: could not create admin account: %v", err)
		case created:
			log.Printf("Created admin account %s with referral code %s", admin.Email, admin.ReferralCode)
		}
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(middleware.SecurityHeaders())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Matrix Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "healthy", "database": "connected", "cache": "disabled"}
		code := http.StatusOK
		if err := client.Ping(ctx, nil); err != nil {
			status["status"], status["database"] = "unhealthy", "disconnected"
			code = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			status["cache"] = "connected"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status["cache"] = "disconnected"
			}
		}
		return c.JSON(code, status)
	})

	// Register routes
	routes.SetupRoutes(e, routes.Controllers{
		Auth:       controllers.NewAuthController(memberService),
		Member:     controllers.NewMemberController(memberService),
		Matrix:     controllers.NewMatrixController(matrixService),
		Commission: controllers.NewCommissionController(commissionService),
		Pin:        controllers.NewPinController(pinService),
	}, jwtSecret)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
