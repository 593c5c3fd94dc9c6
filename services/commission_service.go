package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
)

// CommissionService handles the admin approval workflow of level commissions.
// pending -> approved -> paid, or pending -> rejected.
type CommissionService struct {
	commissions CommissionStore
	members     MemberStore
	notifier    Notifier
	now         func() time.Time
}

func NewCommissionService(commissions CommissionStore, members MemberStore, notifier Notifier) *CommissionService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CommissionService{
		commissions: commissions,
		members:     members,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *CommissionService) List(ctx context.Context, f repositories.CommissionFilter) ([]models.LevelCommission, error) {
	return s.commissions.List(ctx, f)
}

func (s *CommissionService) Approve(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error) {
	return s.transition(ctx, id, adminID, models.CommissionStatusPending, models.CommissionStatusApproved, note)
}

func (s *CommissionService) Reject(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error) {
	return s.transition(ctx, id, adminID, models.CommissionStatusPending, models.CommissionStatusRejected, note)
}

func (s *CommissionService) MarkPaid(ctx context.Context, id, adminID primitive.ObjectID, note string) (*models.LevelCommission, error) {
	return s.transition(ctx, id, adminID, models.CommissionStatusApproved, models.CommissionStatusPaid, note)
}

func (s *CommissionService) transition(ctx context.Context, id, adminID primitive.ObjectID, from, to, note string) (*models.LevelCommission, error) {
	if _, err := s.commissions.FindByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}

	now := s.now()
	set := bson.M{
		"status":      to,
		"processedAt": now,
		"adminId":     adminID,
	}
	if note != "" {
		set["adminNote"] = note
	}
	if to == models.CommissionStatusPaid {
		set["paidAt"] = now
	}

	c, err := s.commissions.Transition(ctx, id, from, set)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCommissionNotPending
		}
		return nil, err
	}

	s.notify(ctx, c)
	return c, nil
}

// notify is best effort; a failed email never undoes a decision
func (s *CommissionService) notify(ctx context.Context, c *models.LevelCommission) {
	member, err := s.members.FindByID(ctx, c.MemberID)
	if err != nil {
		log.Printf("commission %s: cannot load member for notice: %v", c.ID.Hex(), err)
		return
	}
	if err := s.notifier.CommissionProcessed(member, c); err != nil {
		log.Printf("commission %s: %v", c.ID.Hex(), err)
	}
}
