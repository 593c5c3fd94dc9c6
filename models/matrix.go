package models

import (
	"github.com/shopspring/decimal"

	"github.com/HSouheill/matrix_backend/matrix"
)

// ScheduleSetting is the admin override of the commission schedule, stored
// as a single document in the settings collection.
type ScheduleSetting struct {
	Key      string          `json:"-" bson:"_id"`
	Schedule matrix.Schedule `json:"schedule" bson:"schedule"`
}

// ScheduleResponse is returned by GET /api/matrix/schedule
type ScheduleResponse struct {
	Schedule      matrix.Schedule `json:"schedule"`
	TotalPossible decimal.Decimal `json:"totalPossible"`
}

// UpdateScheduleRequest is the body of PUT /api/admin/matrix/schedule
type UpdateScheduleRequest struct {
	Schedule matrix.Schedule `json:"schedule" validate:"required,min=1"`
}

// PreviewRequest is the body of POST /api/matrix/preview. Schedule is
// optional; the active schedule is used when omitted.
type PreviewRequest struct {
	Counts   []int           `json:"counts" validate:"dive,min=0"`
	Schedule matrix.Schedule `json:"schedule,omitempty"`
}

// MatrixDashboard puts the computed projection next to the issued ledger.
// The two are reported separately and never reconciled here.
type MatrixDashboard struct {
	Progress         matrix.Progress `json:"progress"`
	IssuedEarnings   decimal.Decimal `json:"issuedEarnings"`
	PendingApprovals int             `json:"pendingApprovals"`
	DirectReferrals  int             `json:"directReferrals"`
}
