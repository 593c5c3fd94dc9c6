package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
)

// MemberStore is implemented by repositories.MemberRepository
type MemberStore interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	FindByReferralCode(ctx context.Context, code string) (*models.Member, error)
	Count(ctx context.Context) (int64, error)
	Activate(ctx context.Context, id primitive.ObjectID, pin string, at time.Time) error
	ListDirectReferrals(ctx context.Context, id primitive.ObjectID) ([]models.Member, error)
	DownlineCounts(ctx context.Context, id primitive.ObjectID, depth int) ([]int, error)
	Upline(ctx context.Context, id primitive.ObjectID, depth int) ([]primitive.ObjectID, error)
}

// PinStore is implemented by repositories.PinRepository
type PinStore interface {
	InsertMany(ctx context.Context, pins []models.Pin) error
	Redeem(ctx context.Context, code string, memberID primitive.ObjectID, at time.Time) (*models.Pin, error)
	Release(ctx context.Context, code string) error
	List(ctx context.Context, f repositories.PinFilter) ([]models.Pin, error)
}

// CommissionStore is implemented by repositories.CommissionRepository
type CommissionStore interface {
	InsertIfAbsent(ctx context.Context, c *models.LevelCommission) (bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LevelCommission, error)
	List(ctx context.Context, f repositories.CommissionFilter) ([]models.LevelCommission, error)
	Transition(ctx context.Context, id primitive.ObjectID, from string, set bson.M) (*models.LevelCommission, error)
	SumIssued(ctx context.Context, memberID primitive.ObjectID) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, memberID primitive.ObjectID, status string) (int64, error)
}

// SettingsStore is implemented by repositories.SettingsRepository
type SettingsStore interface {
	GetSchedule(ctx context.Context) (matrix.Schedule, error)
	SaveSchedule(ctx context.Context, s matrix.Schedule) error
}
