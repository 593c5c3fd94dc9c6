package matrix

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lvl(level, required int, commission int64) Level {
	return Level{Level: level, RequiredDownlines: required, CommissionPerPerson: decimal.NewFromInt(commission)}
}

func referenceSchedule() Schedule {
	return Schedule{
		lvl(1, 5, 4000),
		lvl(2, 25, 2000),
		lvl(3, 125, 2000),
		lvl(4, 625, 1500),
		lvl(5, 3125, 1500),
		lvl(6, 15625, 1500),
	}
}

func assertDecimal(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s %v", want, got, msgAndArgs)
}

// ---------------------------------------------------------------------------
// ComputeProgress
// ---------------------------------------------------------------------------

func TestComputeProgress_ReferenceScenario(t *testing.T) {
	p, err := ComputeProgress(referenceSchedule(), []int{5, 18, 0, 0, 0, 0})
	require.NoError(t, err)
	require.Len(t, p.Levels, 6)

	l1 := p.Levels[0]
	assert.Equal(t, Completed, l1.Status)
	assert.Equal(t, 100.0, l1.ProgressPercent)
	assertDecimal(t, 20000, l1.TotalCommissionIfComplete)

	l2 := p.Levels[1]
	assert.Equal(t, InProgress, l2.Status)
	assert.Equal(t, 72.0, l2.ProgressPercent)
	assert.Equal(t, 18, l2.CurrentDownlines)

	for i := 2; i < 6; i++ {
		assert.Equal(t, NotStarted, p.Levels[i].Status, "level %d", i+1)
		assert.Equal(t, 0.0, p.Levels[i].ProgressPercent)
	}

	assertDecimal(t, 20000, p.TotalEarned)
	assertDecimal(t, 36000, p.TotalPending)
	assertDecimal(t, 29382500, p.TotalPossible)
}

func TestComputeProgress_ZeroState(t *testing.T) {
	p, err := ComputeProgress(referenceSchedule(), []int{0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	assert.True(t, p.TotalEarned.IsZero())
	assert.True(t, p.TotalPending.IsZero())
	for _, l := range p.Levels {
		assert.Equal(t, NotStarted, l.Status)
		assert.Equal(t, 0.0, l.ProgressPercent)
	}
	assert.Empty(t, p.CompletedLevels())
}

func TestComputeProgress_OverfillIsClamped(t *testing.T) {
	p, err := ComputeProgress(referenceSchedule(), []int{12, 25, 126})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		l := p.Levels[i]
		assert.Equal(t, Completed, l.Status)
		assert.Equal(t, 100.0, l.ProgressPercent)
	}
	// Over-filled count is echoed, not truncated.
	assert.Equal(t, 12, p.Levels[0].CurrentDownlines)
	assertDecimal(t, 20000+50000+250000, p.TotalEarned)
	assert.True(t, p.TotalPending.IsZero())
	assert.Len(t, p.CompletedLevels(), 3)
}

func TestComputeProgress_ShortCountsArePadded(t *testing.T) {
	p, err := ComputeProgress(referenceSchedule(), []int{3})
	require.NoError(t, err)
	require.Len(t, p.Levels, 6)

	assert.Equal(t, InProgress, p.Levels[0].Status)
	assert.Equal(t, 60.0, p.Levels[0].ProgressPercent)
	for i := 1; i < 6; i++ {
		assert.Equal(t, 0, p.Levels[i].CurrentDownlines)
		assert.Equal(t, NotStarted, p.Levels[i].Status)
	}
	assertDecimal(t, 12000, p.TotalPending)
}

func TestComputeProgress_NilCounts(t *testing.T) {
	p, err := ComputeProgress(referenceSchedule(), nil)
	require.NoError(t, err)
	assert.Len(t, p.Levels, 6)
	assert.True(t, p.TotalEarned.IsZero())
}

func TestComputeProgress_ExtraCountsIgnored(t *testing.T) {
	s := Schedule{lvl(1, 2, 100), lvl(2, 4, 50)}
	p, err := ComputeProgress(s, []int{2, 1, 999, -7})
	require.NoError(t, err)
	require.Len(t, p.Levels, 2)
	assertDecimal(t, 200, p.TotalEarned)
	assertDecimal(t, 50, p.TotalPending)
}

func TestComputeProgress_PositionalCorrespondence(t *testing.T) {
	// Labels are not 1..N; counts still follow position.
	s := Schedule{lvl(10, 2, 100), lvl(20, 3, 10), lvl(35, 4, 1)}
	p, err := ComputeProgress(s, []int{0, 3, 1})
	require.NoError(t, err)

	assert.Equal(t, 10, p.Levels[0].Level)
	assert.Equal(t, NotStarted, p.Levels[0].Status)
	assert.Equal(t, 20, p.Levels[1].Level)
	assert.Equal(t, Completed, p.Levels[1].Status)
	assert.Equal(t, 35, p.Levels[2].Level)
	assert.Equal(t, InProgress, p.Levels[2].Status)
	assert.Equal(t, 25.0, p.Levels[2].ProgressPercent)
	assertDecimal(t, 30, p.TotalEarned)
	assertDecimal(t, 1, p.TotalPending)
}

func TestComputeProgress_NegativeCountRejected(t *testing.T) {
	_, err := ComputeProgress(referenceSchedule(), []int{5, -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestComputeProgress_InvalidSchedules(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
	}{
		{"nil", nil},
		{"empty", Schedule{}},
		{"zero requirement", Schedule{lvl(1, 5, 100), lvl(2, 0, 100)}},
		{"negative requirement", Schedule{lvl(1, -5, 100)}},
		{"zero commission", Schedule{lvl(1, 5, 0)}},
		{"negative commission", Schedule{lvl(1, 5, -10)}},
		{"labels out of order", Schedule{lvl(2, 5, 100), lvl(1, 25, 100)}},
		{"duplicate label", Schedule{lvl(1, 5, 100), lvl(1, 25, 100)}},
		{"non-positive label", Schedule{lvl(0, 5, 100)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ComputeProgress(tc.schedule, []int{1, 1})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
			assert.Nil(t, p.Levels, "no partial result on error")
		})
	}
}

func TestComputeProgress_Idempotent(t *testing.T) {
	s := referenceSchedule()
	counts := []int{5, 18, 3, 0, 0, 0}
	a, err := ComputeProgress(s, counts)
	require.NoError(t, err)
	b, err := ComputeProgress(s, counts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []int{5, 18, 3, 0, 0, 0}, counts, "input must not be mutated")
}

func TestComputeProgress_Monotonic(t *testing.T) {
	s := referenceSchedule()
	for pos := range s {
		prevPct := -1.0
		prevSum := decimal.NewFromInt(-1)
		for c := 0; c <= s[pos].RequiredDownlines+3 && c <= 200; c++ {
			counts := make([]int, len(s))
			counts[pos] = c
			p, err := ComputeProgress(s, counts)
			require.NoError(t, err)

			pct := p.Levels[pos].ProgressPercent
			sum := p.TotalEarned.Add(p.TotalPending)
			assert.GreaterOrEqual(t, pct, prevPct, "level %d count %d", pos+1, c)
			assert.True(t, sum.GreaterThanOrEqual(prevSum), "level %d count %d", pos+1, c)
			prevPct, prevSum = pct, sum
		}
	}
}

func TestComputeProgress_Conservation(t *testing.T) {
	s := referenceSchedule()
	samples := [][]int{
		{0, 0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1, 1},
		{4, 24, 124, 624, 3124, 15624},
		{5, 25, 125, 625, 3125, 15625},
		{50, 250, 1250, 6250, 31250, 156250},
		{5, 0, 125, 3, 0, 20000},
	}
	for _, counts := range samples {
		p, err := ComputeProgress(s, counts)
		require.NoError(t, err)
		assert.True(t, p.TotalEarned.Add(p.TotalPending).LessThanOrEqual(p.TotalPossible), "counts %v", counts)
		for _, l := range p.Levels {
			assert.LessOrEqual(t, l.ProgressPercent, 100.0)
			assert.GreaterOrEqual(t, l.ProgressPercent, 0.0)
		}
	}
}

func TestComputeProgress_ScheduleLengthAgnostic(t *testing.T) {
	one := Schedule{lvl(1, 3, 10)}
	p, err := ComputeProgress(one, []int{3})
	require.NoError(t, err)
	require.Len(t, p.Levels, 1)
	assertDecimal(t, 30, p.TotalEarned)
	assertDecimal(t, 30, p.TotalPossible)

	ten := make(Schedule, 10)
	counts := make([]int, 10)
	for i := range ten {
		ten[i] = lvl(i+1, 2, int64(i+1))
		counts[i] = i % 3
	}
	p, err = ComputeProgress(ten, counts)
	require.NoError(t, err)
	require.Len(t, p.Levels, 10)

	// counts cycle 0,1,2: positions 2,5,8 complete, 1,4,7 half done.
	assertDecimal(t, 2*3+2*6+2*9, p.TotalEarned)
	assertDecimal(t, 2+5+8, p.TotalPending)
	assertDecimal(t, 2*55, p.TotalPossible)
	assert.Equal(t, 50.0, p.Levels[1].ProgressPercent)
}

func TestComputeProgress_FractionalCommission(t *testing.T) {
	s := Schedule{{Level: 1, RequiredDownlines: 3, CommissionPerPerson: decimal.RequireFromString("0.10")}}
	p, err := ComputeProgress(s, []int{3})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.30").Equal(p.TotalEarned), "got %s", p.TotalEarned)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestRequiredDownlinesForLevel(t *testing.T) {
	s := referenceSchedule()
	want := []int{5, 25, 125, 625, 3125, 15625}
	for i, w := range want {
		got, err := s.RequiredDownlinesForLevel(i)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	for _, bad := range []int{-1, 6, 100} {
		_, err := s.RequiredDownlinesForLevel(bad)
		assert.True(t, errors.Is(err, ErrInvalidInput), "index %d", bad)
	}
}

func TestCommissionForLevel(t *testing.T) {
	s := referenceSchedule()
	got, err := s.CommissionForLevel(0)
	require.NoError(t, err)
	assertDecimal(t, 4000, got)

	got, err = s.CommissionForLevel(5)
	require.NoError(t, err)
	assertDecimal(t, 1500, got)

	_, err = s.CommissionForLevel(6)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTotalPossibleEarnings(t *testing.T) {
	total, err := referenceSchedule().TotalPossibleEarnings()
	require.NoError(t, err)
	assertDecimal(t, 29382500, total)

	_, err = Schedule{}.TotalPossibleEarnings()
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestProgressPercent_ZeroRequirement(t *testing.T) {
	assert.Equal(t, 0.0, progressPercent(3, 0))
	assert.Equal(t, 0.0, progressPercent(0, -1))
	assert.Equal(t, 100.0, progressPercent(7, 5))
}
