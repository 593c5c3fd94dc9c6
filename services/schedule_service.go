package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HSouheill/matrix_backend/matrix"
	"github.com/HSouheill/matrix_backend/repositories"
)

// ScheduleService resolves the commission schedule in force. An admin
// override stored in the database wins over the configured default.
type ScheduleService struct {
	store    SettingsStore
	fallback matrix.Schedule
}

func NewScheduleService(store SettingsStore, fallback matrix.Schedule) *ScheduleService {
	return &ScheduleService{store: store, fallback: fallback}
}

// Active returns the schedule to compute progress with
func (s *ScheduleService) Active(ctx context.Context) (matrix.Schedule, error) {
	stored, err := s.store.GetSchedule(ctx)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		if err := s.fallback.Validate(); err != nil {
			return nil, err
		}
		return s.fallback, nil
	case err != nil:
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if err := stored.Validate(); err != nil {
		return nil, fmt.Errorf("stored schedule: %w", err)
	}
	return stored, nil
}

// Update validates and stores a new schedule override
func (s *ScheduleService) Update(ctx context.Context, schedule matrix.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	return s.store.SaveSchedule(ctx, schedule)
}

// Fingerprint identifies a schedule so cached results computed with an
// older schedule are never served.
func Fingerprint(schedule matrix.Schedule) string {
	data, _ := json.Marshal(schedule)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
