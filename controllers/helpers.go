package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/middleware"
	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/services"
)

const requestTimeout = 10 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

var (
	errInvalidBody      = errors.New("Invalid request body")
	errInvalidPinStatus = errors.New("Invalid status filter")
	errInvalidLimit     = errors.New("limit must be a positive integer")
)

// bindAndValidate decodes the body into req and runs the echo validator.
// The returned error is safe to show to the client.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("Validation failed: %w", err)
	}
	return nil
}

// currentMemberID returns the authenticated member from the JWT claims
func currentMemberID(c echo.Context) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
}

// respondError maps service and engine errors to HTTP responses
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, matrix.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, matrix.ErrInvalidConfiguration):
		status, message = http.StatusInternalServerError, "Commission schedule is misconfigured"
	case errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrCommissionNotFound),
		errors.Is(err, services.ErrStockistNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyActive),
		errors.Is(err, services.ErrCommissionNotPending):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidPhone),
		errors.Is(err, services.ErrSponsorNotFound),
		errors.Is(err, services.ErrSponsorRequired),
		errors.Is(err, services.ErrSponsorBlocked),
		errors.Is(err, services.ErrPinUnavailable):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefreshToken):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrMemberBlocked):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrTooManyPinAttempts):
		status, message = http.StatusTooManyRequests, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Request timed out"
	}

	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return respond(c, status, message, nil)
}
