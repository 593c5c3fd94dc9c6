package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/HSouheill/matrix_backend/matrix"
)

// ErrScheduleSource indicates the configured schedule could not be read.
var ErrScheduleSource = errors.New("config: cannot read commission schedule")

// DefaultCommissionSchedule is the reference 5-wide, 6-deep schedule used
// when neither MATRIX_SCHEDULE nor MATRIX_SCHEDULE_FILE is set.
func DefaultCommissionSchedule() matrix.Schedule {
	commissions := []int64{4000, 2000, 2000, 1500, 1500, 1500}
	s := make(matrix.Schedule, len(commissions))
	required := 1
	for i, c := range commissions {
		required *= 5
		s[i] = matrix.Level{
			Level:               i + 1,
			RequiredDownlines:   required,
			CommissionPerPerson: decimal.NewFromInt(c),
		}
	}
	return s
}

// ParseCommissionSchedule decodes and validates a JSON schedule such as
// [{"level":1,"requiredDownlines":5,"commissionPerPerson":"4000"}].
func ParseCommissionSchedule(data []byte) (matrix.Schedule, error) {
	var s matrix.Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScheduleSource, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadCommissionSchedule reads the schedule from MATRIX_SCHEDULE (inline
// JSON), then MATRIX_SCHEDULE_FILE, falling back to the default.
func LoadCommissionSchedule() (matrix.Schedule, error) {
	if inline := os.Getenv("MATRIX_SCHEDULE"); inline != "" {
		log.Println("Using commission schedule from MATRIX_SCHEDULE")
		return ParseCommissionSchedule([]byte(inline))
	}

	if path := os.Getenv("MATRIX_SCHEDULE_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScheduleSource, err)
		}
		log.Printf("Using commission schedule file: %s", path)
		return ParseCommissionSchedule(data)
	}

	log.Println("Using default commission schedule")
	return DefaultCommissionSchedule(), nil
}
