package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/models"
)

// MatrixProvider is implemented by services.MatrixService
type MatrixProvider interface {
	Schedule(ctx context.Context) (*models.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, schedule matrix.Schedule) error
	Progress(ctx context.Context, memberID primitive.ObjectID) (matrix.Progress, error)
	Dashboard(ctx context.Context, memberID primitive.ObjectID) (*models.MatrixDashboard, error)
	Preview(ctx context.Context, counts []int, schedule matrix.Schedule) (matrix.Progress, error)
	SyncCommissions(ctx context.Context, memberID primitive.ObjectID) ([]models.LevelCommission, error)
}

// MatrixController serves the commission schedule and per-member progress
type MatrixController struct {
	matrix MatrixProvider
}

func NewMatrixController(matrix MatrixProvider) *MatrixController {
	return &MatrixController{matrix: matrix}
}

// GetSchedule handles GET /api/matrix/schedule
func (mc *MatrixController) GetSchedule(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := mc.matrix.Schedule(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Commission schedule retrieved successfully", resp)
}

// UpdateSchedule handles PUT /api/admin/matrix/schedule
func (mc *MatrixController) UpdateSchedule(c echo.Context) error {
	var req models.UpdateScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := mc.matrix.UpdateSchedule(ctx, req.Schedule); err != nil {
		if errors.Is(err, matrix.ErrInvalidConfiguration) {
			return respond(c, http.StatusBadRequest, err.Error(), nil)
		}
		return respondError(c, err)
	}

	resp, err := mc.matrix.Schedule(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Commission schedule updated successfully", resp)
}

// Preview handles POST /api/matrix/preview. It computes progress for the
// posted counts without touching any member.
func (mc *MatrixController) Preview(c echo.Context) error {
	var req models.PreviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := mc.matrix.Preview(ctx, req.Counts, req.Schedule)
	if err != nil {
		// A posted schedule is client input.
		if len(req.Schedule) > 0 && errors.Is(err, matrix.ErrInvalidConfiguration) {
			return respond(c, http.StatusBadRequest, err.Error(), nil)
		}
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Progress computed successfully", p)
}

// GetProgress handles GET /api/matrix/progress
func (mc *MatrixController) GetProgress(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	return mc.progress(c, memberID)
}

// GetMemberProgress handles GET /api/admin/members/:id/progress
func (mc *MatrixController) GetMemberProgress(c echo.Context) error {
	memberID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid member ID format", nil)
	}
	return mc.progress(c, memberID)
}

func (mc *MatrixController) progress(c echo.Context, memberID primitive.ObjectID) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := mc.matrix.Progress(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Matrix progress retrieved successfully", p)
}

// GetDashboard handles GET /api/matrix/dashboard
func (mc *MatrixController) GetDashboard(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := mc.matrix.Dashboard(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Dashboard retrieved successfully", d)
}

// SyncCommissions handles POST /api/admin/members/:id/commissions/sync
func (mc *MatrixController) SyncCommissions(c echo.Context) error {
	memberID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid member ID format", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := mc.matrix.SyncCommissions(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Commissions synchronized successfully", map[string]interface{}{
		"created": created,
		"count":   len(created),
	})
}
