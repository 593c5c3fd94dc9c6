package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Level commission statuses
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusRejected = "rejected"
	CommissionStatusPaid     = "paid"
)

// LevelCommission is the payable record created when a member completes a
// matrix level. It is the ledger of record; computed progress is not.
type LevelCommission struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	MemberID    primitive.ObjectID  `json:"memberId" bson:"memberId"`
	Level       int                 `json:"level" bson:"level"`
	Downlines   int                 `json:"downlines" bson:"downlines"`
	Amount      decimal.Decimal     `json:"amount" bson:"amount"`
	Status      string              `json:"status" bson:"status"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	ProcessedAt *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	AdminID     *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	AdminNote   string              `json:"adminNote,omitempty" bson:"adminNote,omitempty"`
	PaidAt      *time.Time          `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// ProcessCommissionRequest is the body of the admin approve/reject/pay routes
type ProcessCommissionRequest struct {
	Note string `json:"note,omitempty" validate:"max=500"`
}
