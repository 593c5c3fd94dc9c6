package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
)

// MatrixService feeds stored downline counts and the active schedule into
// the matrix engine. Its results are projections; the commission ledger is
// only written by SyncCommissions.
type MatrixService struct {
	schedules   *ScheduleService
	members     MemberStore
	commissions CommissionStore
	cache       ProgressCache
	now         func() time.Time
}

func NewMatrixService(schedules *ScheduleService, members MemberStore, commissions CommissionStore, cache ProgressCache) *MatrixService {
	if cache == nil {
		cache = noopCache{}
	}
	return &MatrixService{
		schedules:   schedules,
		members:     members,
		commissions: commissions,
		cache:       cache,
		now:         time.Now,
	}
}

// Schedule returns the active schedule and its ceiling
func (s *MatrixService) Schedule(ctx context.Context) (*models.ScheduleResponse, error) {
	schedule, err := s.schedules.Active(ctx)
	if err != nil {
		return nil, err
	}
	total, err := schedule.TotalPossibleEarnings()
	if err != nil {
		return nil, err
	}
	return &models.ScheduleResponse{Schedule: schedule, TotalPossible: total}, nil
}

// UpdateSchedule stores a new schedule. Cached progress keyed by the old
// schedule fingerprint simply stops being read.
func (s *MatrixService) UpdateSchedule(ctx context.Context, schedule matrix.Schedule) error {
	return s.schedules.Update(ctx, schedule)
}

// Progress computes the matrix progress of a member
func (s *MatrixService) Progress(ctx context.Context, memberID primitive.ObjectID) (matrix.Progress, error) {
	schedule, err := s.schedules.Active(ctx)
	if err != nil {
		return matrix.Progress{}, err
	}
	return s.progress(ctx, schedule, memberID)
}

func (s *MatrixService) progress(ctx context.Context, schedule matrix.Schedule, memberID primitive.ObjectID) (matrix.Progress, error) {
	key := progressKey(Fingerprint(schedule), memberID.Hex())
	if p, ok := s.cache.Get(ctx, key); ok {
		return p, nil
	}

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return matrix.Progress{}, ErrMemberNotFound
		}
		return matrix.Progress{}, err
	}

	counts, err := s.members.DownlineCounts(ctx, memberID, len(schedule))
	if err != nil {
		return matrix.Progress{}, fmt.Errorf("downline counts: %w", err)
	}

	p, err := matrix.ComputeProgress(schedule, counts)
	if err != nil {
		return matrix.Progress{}, err
	}
	s.cache.Set(ctx, key, p)
	return p, nil
}

// Dashboard reports the computed projection and the issued ledger side by side
func (s *MatrixService) Dashboard(ctx context.Context, memberID primitive.ObjectID) (*models.MatrixDashboard, error) {
	p, err := s.Progress(ctx, memberID)
	if err != nil {
		return nil, err
	}

	issued, err := s.commissions.SumIssued(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("issued earnings: %w", err)
	}
	pending, err := s.commissions.CountByStatus(ctx, memberID, models.CommissionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("pending approvals: %w", err)
	}
	referrals, err := s.members.ListDirectReferrals(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("direct referrals: %w", err)
	}

	return &models.MatrixDashboard{
		Progress:         p,
		IssuedEarnings:   issued,
		PendingApprovals: int(pending),
		DirectReferrals:  len(referrals),
	}, nil
}

// Preview computes progress for arbitrary counts. The active schedule is
// used when schedule is empty.
func (s *MatrixService) Preview(ctx context.Context, counts []int, schedule matrix.Schedule) (matrix.Progress, error) {
	if len(schedule) == 0 {
		active, err := s.schedules.Active(ctx)
		if err != nil {
			return matrix.Progress{}, err
		}
		schedule = active
	}
	return matrix.ComputeProgress(schedule, counts)
}

// SyncCommissions creates a pending LevelCommission for every completed
// level that has none yet and returns the ones created. Approval is left to
// an admin.
func (s *MatrixService) SyncCommissions(ctx context.Context, memberID primitive.ObjectID) ([]models.LevelCommission, error) {
	schedule, err := s.schedules.Active(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.progress(ctx, schedule, memberID)
	if err != nil {
		return nil, err
	}

	created := []models.LevelCommission{}
	for _, l := range p.CompletedLevels() {
		c := models.LevelCommission{
			MemberID:  memberID,
			Level:     l.Level,
			Downlines: l.RequiredDownlines,
			Amount:    l.TotalCommissionIfComplete,
			Status:    models.CommissionStatusPending,
			CreatedAt: s.now(),
		}
		ok, err := s.commissions.InsertIfAbsent(ctx, &c)
		if err != nil {
			return created, fmt.Errorf("level %d commission: %w", l.Level, err)
		}
		if ok {
			created = append(created, c)
		}
	}
	return created, nil
}

// RefreshUpline drops cached progress of the sponsors above memberID and
// syncs their commissions. It runs after a member is activated.
func (s *MatrixService) RefreshUpline(ctx context.Context, memberID primitive.ObjectID) error {
	schedule, err := s.schedules.Active(ctx)
	if err != nil {
		return err
	}
	upline, err := s.members.Upline(ctx, memberID, len(schedule))
	if err != nil {
		return fmt.Errorf("upline: %w", err)
	}

	fp := Fingerprint(schedule)
	keys := make([]string, 0, len(upline)+1)
	keys = append(keys, progressKey(fp, memberID.Hex()))
	for _, id := range upline {
		keys = append(keys, progressKey(fp, id.Hex()))
	}
	s.cache.Delete(ctx, keys...)

	var errs []error
	for _, id := range upline {
		created, err := s.SyncCommissions(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, c := range created {
			log.Printf("Level %d commission of %s queued for approval for member %s", c.Level, c.Amount, id.Hex())
		}
	}
	return errors.Join(errs...)
}
