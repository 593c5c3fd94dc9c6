package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/utils"
)

// MemberAccounts is implemented by services.MemberService
type MemberAccounts interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	DirectReferrals(ctx context.Context, id primitive.ObjectID) ([]models.ReferralSummary, error)
	Activate(ctx context.Context, id primitive.ObjectID, pin string) (*models.Member, error)
}

type MemberController struct {
	members MemberAccounts
}

func NewMemberController(members MemberAccounts) *MemberController {
	return &MemberController{members: members}
}

// GetMe handles GET /api/members/me
func (mc *MemberController) GetMe(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := mc.members.Get(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Member retrieved successfully", member)
}

// GetReferrals handles GET /api/members/me/referrals
func (mc *MemberController) GetReferrals(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := mc.members.Get(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}
	referrals, err := mc.members.DirectReferrals(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, "Referral data retrieved successfully", map[string]interface{}{
		"referralCode":  member.ReferralCode,
		"referralLink":  utils.ReferralLink(member.ReferralCode),
		"referralCount": len(referrals),
		"referrals":     referrals,
	})
}

// GetReferralQRCode handles GET /api/members/me/referral/qrcode
func (mc *MemberController) GetReferralQRCode(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	size := 256
	if s := c.QueryParam("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > 1024 {
			return respond(c, http.StatusBadRequest, "size must be between 64 and 1024", nil)
		}
		size = n
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := mc.members.Get(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}

	png, err := utils.ReferralQRCode(member.ReferralCode, size)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// Activate handles POST /api/members/activate
func (mc *MemberController) Activate(c echo.Context) error {
	memberID, err := currentMemberID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	var req models.ActivateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := mc.members.Activate(ctx, memberID, req.Pin)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Account activated successfully", member)
}
