package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
)

// PinIssuer is implemented by services.PinService
type PinIssuer interface {
	Generate(ctx context.Context, adminID primitive.ObjectID, count int, stockistID *primitive.ObjectID) ([]models.Pin, error)
	List(ctx context.Context, f repositories.PinFilter) ([]models.Pin, error)
}

type PinController struct {
	pins PinIssuer
}

func NewPinController(pins PinIssuer) *PinController {
	return &PinController{pins: pins}
}

// Generate handles POST /api/admin/pins
func (pc *PinController) Generate(c echo.Context) error {
	adminID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	var req models.GeneratePinsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	var stockistID *primitive.ObjectID
	if req.StockistID != "" {
		id, err := primitive.ObjectIDFromHex(req.StockistID)
		if err != nil {
			return respond(c, http.StatusBadRequest, "Invalid stockist ID format", nil)
		}
		stockistID = &id
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pins, err := pc.pins.Generate(ctx, adminID, req.Count, stockistID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Pins generated successfully", pins)
}

// ListAll handles GET /api/admin/pins?status=&stockistId=&limit=
func (pc *PinController) ListAll(c echo.Context) error {
	f, err := pinFilterFromQuery(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	if raw := c.QueryParam("stockistId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return respond(c, http.StatusBadRequest, "Invalid stockist ID format", nil)
		}
		f.StockistID = &id
	}
	return pc.list(c, f)
}

// ListStockist handles GET /api/stockist/pins, the PINs assigned to the caller
func (pc *PinController) ListStockist(c echo.Context) error {
	stockistID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	f, err := pinFilterFromQuery(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	f.StockistID = &stockistID
	return pc.list(c, f)
}

func (pc *PinController) list(c echo.Context, f repositories.PinFilter) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	pins, err := pc.pins.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Pins retrieved successfully", pins)
}

func pinFilterFromQuery(c echo.Context) (repositories.PinFilter, error) {
	f := repositories.PinFilter{Status: c.QueryParam("status")}
	switch f.Status {
	case "", models.PinStatusUnused, models.PinStatusUsed:
	default:
		return f, errInvalidPinStatus
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return f, errInvalidLimit
		}
		f.Limit = n
	}
	return f, nil
}
