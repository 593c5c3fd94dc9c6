package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
	"github.com/HSouheill/matrix_backend/utils"
)

// PinService generates activation PINs and lists them for admins and stockists
type PinService struct {
	pins    PinStore
	members MemberStore
	now     func() time.Time
}

func NewPinService(pins PinStore, members MemberStore) *PinService {
	return &PinService{pins: pins, members: members, now: time.Now}
}

// Generate creates count unused PINs, optionally assigned to a stockist
func (s *PinService) Generate(ctx context.Context, adminID primitive.ObjectID, count int, stockistID *primitive.ObjectID) ([]models.Pin, error) {
	if stockistID != nil {
		stockist, err := s.members.FindByID(ctx, *stockistID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockistNotFound
		}
		if err != nil {
			return nil, err
		}
		if stockist.UserType != models.MemberTypeStockist {
			return nil, ErrStockistNotFound
		}
	}

	now := s.now()
	pins := make([]models.Pin, 0, count)
	seen := make(map[string]bool, count)
	for len(pins) < count {
		code, err := utils.GeneratePinCode()
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		pins = append(pins, models.Pin{
			Code:        code,
			Status:      models.PinStatusUnused,
			GeneratedBy: adminID,
			StockistID:  stockistID,
			CreatedAt:   now,
		})
	}

	if err := s.pins.InsertMany(ctx, pins); err != nil {
		return nil, err
	}
	return pins, nil
}

func (s *PinService) List(ctx context.Context, f repositories.PinFilter) ([]models.Pin, error) {
	return s.pins.List(ctx, f)
}
