package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pin statuses
const (
	PinStatusUnused = "unused"
	PinStatusUsed   = "used"
)

// Pin is a one-time activation code generated by an admin and optionally
// handed to a stockist for resale.
type Pin struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Code        string              `json:"code" bson:"code"`
	Status      string              `json:"status" bson:"status"`
	GeneratedBy primitive.ObjectID  `json:"generatedBy" bson:"generatedBy"`
	StockistID  *primitive.ObjectID `json:"stockistId,omitempty" bson:"stockistId,omitempty"`
	UsedBy      *primitive.ObjectID `json:"usedBy,omitempty" bson:"usedBy,omitempty"`
	UsedAt      *time.Time          `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
}

// GeneratePinsRequest is the body of POST /api/admin/pins
type GeneratePinsRequest struct {
	Count      int    `json:"count" validate:"required,min=1,max=500"`
	StockistID string `json:"stockistId,omitempty"`
}
