package controllers

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/matrix_backend/models"
)

// AccountService is the part of services.MemberService used for sign-up and sign-in
type AccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Member, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error)
}

// AuthController contains authentication logic
type AuthController struct {
	accounts AccountService
	logger   *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(accounts AccountService) *AuthController {
	return &AuthController{
		accounts: accounts,
		logger:   log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := ac.accounts.Register(ctx, req)
	if err != nil {
		return respondError(c, err)
	}

	ac.logger.Printf("Member %s registered", member.ID.Hex())
	return respond(c, http.StatusCreated, "Registration successful. Activate your account with a PIN.", member)
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := ac.accounts.Login(ctx, req)
	if err != nil {
		ac.logger.Printf("Failed login from %s: %v", c.RealIP(), err)
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Login successful", resp)
}

// Refresh handles POST /api/auth/refresh
func (ac *AuthController) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := ac.accounts.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Token refreshed successfully", resp)
}
