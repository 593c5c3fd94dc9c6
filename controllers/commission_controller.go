package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
)

// CommissionLedger is implemented by services.CommissionService
type CommissionLedger interface {
	List(ctx context.Context, f repositories.CommissionFilter) ([]models.LevelCommission, error)
	Approve(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error)
	Reject(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error)
	MarkPaid(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error)
}

type CommissionController struct {
	ledger CommissionLedger
}

func NewCommissionController(ledger CommissionLedger) *CommissionController {
	return &CommissionController{ledger: ledger}
}

func validCommissionStatus(status string) bool {
	switch status {
	case "", models.CommissionStatusPending, models.CommissionStatusApproved,
		models.CommissionStatusRejected, models.CommissionStatusPaid:
		return true
	}
	return false
}

// ListMine handles GET /api/commissions
func (cc *CommissionController) ListMine(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	status := c.QueryParam("status")
	if !validCommissionStatus(status) {
		return respond(c, http.StatusBadRequest, "Invalid status filter", nil)
	}
	return cc.list(c, repositories.CommissionFilter{Status: status, MemberID: &memberID})
}

// ListAll handles GET /api/admin/commissions?status=&memberId=
func (cc *CommissionController) ListAll(c echo.Context) error {
	f := repositories.CommissionFilter{Status: c.QueryParam("status")}
	if !validCommissionStatus(f.Status) {
		return respond(c, http.StatusBadRequest, "Invalid status filter", nil)
	}
	if raw := c.QueryParam("memberId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return respond(c, http.StatusBadRequest, "Invalid member ID format", nil)
		}
		f.MemberID = &id
	}
	return cc.list(c, f)
}

func (cc *CommissionController) list(c echo.Context, f repositories.CommissionFilter) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := cc.ledger.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Commissions retrieved successfully", list)
}

type commissionDecision func(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error)

// Approve handles POST /api/admin/commissions/:id/approve
func (cc *CommissionController) Approve(c echo.Context) error {
	return cc.process(c, cc.ledger.Approve, "Commission approved successfully")
}

// Reject handles POST /api/admin/commissions/:id/reject
func (cc *CommissionController) Reject(c echo.Context) error {
	return cc.process(c, cc.ledger.Reject, "Commission rejected successfully")
}

// Pay handles POST /api/admin/commissions/:id/pay
func (cc *CommissionController) Pay(c echo.Context) error {
	return cc.process(c, cc.ledger.MarkPaid, "Commission marked as paid")
}

func (cc *CommissionController) process(c echo.Context, decide commissionDecision, message string) error {
	adminID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "Invalid commission ID format", nil)
	}

	var req models.ProcessCommissionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	commission, err := decide(ctx, id, adminID, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, message, commission)
}
