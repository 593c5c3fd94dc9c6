// Package matrix computes per-level progress and earnings of a member's
// downline against a commission schedule. It performs no I/O and keeps no
// state between calls.
package matrix

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status is the completion state of a single matrix level.
type Status string

const (
	NotStarted Status = "not_started"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
)

// Level is one entry of a commission schedule.
type Level struct {
	Level               int             `json:"level" bson:"level"`
	RequiredDownlines   int             `json:"requiredDownlines" bson:"requiredDownlines"`
	CommissionPerPerson decimal.Decimal `json:"commissionPerPerson" bson:"commissionPerPerson"`
}

// Schedule is the ordered list of levels. Downline counts are matched to
// levels by position, not by the Level label.
type Schedule []Level

// LevelResult is the computed state of one level for one member.
type LevelResult struct {
	Level                     int             `json:"level"`
	RequiredDownlines         int             `json:"requiredDownlines"`
	CommissionPerPerson       decimal.Decimal `json:"commissionPerPerson"`
	CurrentDownlines          int             `json:"currentDownlines"`
	TotalCommissionIfComplete decimal.Decimal `json:"totalCommissionIfComplete"`
	Status                    Status          `json:"status"`
	ProgressPercent           float64         `json:"progressPercent"`
}

// Progress is the full report produced by ComputeProgress.
type Progress struct {
	Levels        []LevelResult   `json:"levels"`
	TotalEarned   decimal.Decimal `json:"totalEarned"`
	TotalPending  decimal.Decimal `json:"totalPending"`
	TotalPossible decimal.Decimal `json:"totalPossible"`
}

// Validate reports ErrInvalidConfiguration when the schedule is empty, when a
// level label is not positive and strictly increasing, or when a requirement
// or commission is not positive.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: schedule is empty", ErrInvalidConfiguration)
	}
	prev := 0
	for i, l := range s {
		if l.Level <= prev {
			return fmt.Errorf("%w: level label %d at position %d is out of order", ErrInvalidConfiguration, l.Level, i)
		}
		if l.RequiredDownlines <= 0 {
			return fmt.Errorf("%w: level %d requires %d downlines", ErrInvalidConfiguration, l.Level, l.RequiredDownlines)
		}
		if !l.CommissionPerPerson.IsPositive() {
			return fmt.Errorf("%w: level %d commission %s is not positive", ErrInvalidConfiguration, l.Level, l.CommissionPerPerson)
		}
		prev = l.Level
	}
	return nil
}

// RequiredDownlinesForLevel returns the requirement at zero-based position i.
func (s Schedule) RequiredDownlinesForLevel(i int) (int, error) {
	if i < 0 || i >= len(s) {
		return 0, fmt.Errorf("%w: level index %d out of range [0,%d)", ErrInvalidInput, i, len(s))
	}
	return s[i].RequiredDownlines, nil
}

// CommissionForLevel returns the per-person commission at zero-based position i.
func (s Schedule) CommissionForLevel(i int) (decimal.Decimal, error) {
	if i < 0 || i >= len(s) {
		return decimal.Zero, fmt.Errorf("%w: level index %d out of range [0,%d)", ErrInvalidInput, i, len(s))
	}
	return s[i].CommissionPerPerson, nil
}

// TotalPossibleEarnings sums every level's ceiling, independent of any member.
func (s Schedule) TotalPossibleEarnings() (decimal.Decimal, error) {
	if err := s.Validate(); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, l := range s {
		total = total.Add(l.ceiling())
	}
	return total, nil
}

func (l Level) ceiling() decimal.Decimal {
	return l.CommissionPerPerson.Mul(decimal.NewFromInt(int64(l.RequiredDownlines)))
}

// ComputeProgress maps a downline-count snapshot onto the schedule.
//
// counts[i] belongs to s[i]. Missing trailing counts are zero and surplus
// counts are ignored. A negative count fails with ErrInvalidInput; counts are
// never clamped. A count above the requirement is treated as exactly the
// requirement for status and earnings, but is echoed unchanged.
func ComputeProgress(s Schedule, counts []int) (Progress, error) {
	if err := s.Validate(); err != nil {
		return Progress{}, err
	}
	for i, c := range counts {
		if i >= len(s) {
			break
		}
		if c < 0 {
			return Progress{}, fmt.Errorf("%w: negative downline count %d at position %d", ErrInvalidInput, c, i)
		}
	}

	p := Progress{
		Levels:        make([]LevelResult, len(s)),
		TotalEarned:   decimal.Zero,
		TotalPending:  decimal.Zero,
		TotalPossible: decimal.Zero,
	}
	for i, l := range s {
		count := 0
		if i < len(counts) {
			count = counts[i]
		}
		r := LevelResult{
			Level:                     l.Level,
			RequiredDownlines:         l.RequiredDownlines,
			CommissionPerPerson:       l.CommissionPerPerson,
			CurrentDownlines:          count,
			TotalCommissionIfComplete: l.ceiling(),
			ProgressPercent:           progressPercent(count, l.RequiredDownlines),
		}
		switch {
		case count == 0:
			r.Status = NotStarted
		case count < l.RequiredDownlines:
			r.Status = InProgress
			p.TotalPending = p.TotalPending.Add(l.CommissionPerPerson.Mul(decimal.NewFromInt(int64(count))))
		default:
			r.Status = Completed
			p.TotalEarned = p.TotalEarned.Add(r.TotalCommissionIfComplete)
		}
		p.TotalPossible = p.TotalPossible.Add(r.TotalCommissionIfComplete)
		p.Levels[i] = r
	}
	return p, nil
}

// CompletedLevels returns the results whose status is Completed.
func (p Progress) CompletedLevels() []LevelResult {
	var out []LevelResult
	for _, l := range p.Levels {
		if l.Status == Completed {
			out = append(out, l)
		}
	}
	return out
}

func progressPercent(count, required int) float64 {
	if required <= 0 {
		return 0
	}
	if count >= required {
		return 100
	}
	return float64(count) * 100 / float64(required)
}
