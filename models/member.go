// models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member types
const (
	MemberTypeMember   = "member"
	MemberTypeStockist = "stockist"
	MemberTypeAdmin    = "admin"
)

// Member statuses
const (
	MemberStatusPending = "pending" // registered, not yet activated with a PIN
	MemberStatusActive  = "active"
	MemberStatusBlocked = "blocked"
)

// Member is a registered participant of the matrix
type Member struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	FullName      string              `json:"fullName" bson:"fullName"`
	Email         string              `json:"email" bson:"email"`
	Phone         string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Password      string              `json:"-" bson:"password"`
	UserType      string              `json:"userType" bson:"userType"`
	Status        string              `json:"status" bson:"status"`
	SponsorID     *primitive.ObjectID `json:"sponsorId,omitempty" bson:"sponsorId,omitempty"`
	ReferralCode  string              `json:"referralCode" bson:"referralCode"`
	ActivatedAt   *time.Time          `json:"activatedAt,omitempty" bson:"activatedAt,omitempty"`
	ActivationPin string              `json:"-" bson:"activationPin,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// IsActive reports whether the member has been activated
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,min=8,max=16"`
	Password     string `json:"password" validate:"required,min=8"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued tokens
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Member       Member `json:"member"`
}

// RefreshRequest is the body of POST /api/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ActivateRequest is the body of POST /api/members/activate
type ActivateRequest struct {
	Pin string `json:"pin" validate:"required"`
}

// ReferralSummary is a direct referral as shown on the member dashboard
type ReferralSummary struct {
	ID        primitive.ObjectID `json:"id"`
	FullName  string             `json:"fullName"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}
