package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusAt_DerivedFromFlagsAndClock(t *testing.T) {
	a := &Account{
		Address:       "alice",
		CheckInPeriod: day,
		GracePeriod:   day,
		LastCheckIn:   t0,
	}

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"at check-in", t0, StatusAlive},
		{"just before deadline", t0.Add(day), StatusAlive},
		{"one second into grace", t0.Add(day + time.Second), StatusGrace},
		{"last second of grace", t0.Add(2 * day), StatusGrace},
		{"past grace", t0.Add(2*day + time.Second), StatusDeceased},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := a.StatusAt(tc.now)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestStatusAt_GraceReportsRemaining(t *testing.T) {
	a := &Account{CheckInPeriod: day, GracePeriod: day, LastCheckIn: t0}

	_, remaining := a.StatusAt(t0.Add(day + 6*time.Hour))
	require.Equal(t, 18*time.Hour, remaining)
}

func TestStatusAt_FlagsOverrideClock(t *testing.T) {
	a := &Account{CheckInPeriod: day, GracePeriod: day, LastCheckIn: t0}

	a.FinalAlive = true
	got, _ := a.StatusAt(t0.Add(100 * day))
	require.Equal(t, StatusFinalAlive, got)

	// Deceased wins over everything, including a fresh check-in.
	a.FinalAlive = false
	a.Deceased = true
	got, _ = a.StatusAt(t0)
	require.Equal(t, StatusDeceased, got)
}

func TestStatusAt_IsPure(t *testing.T) {
	a := &Account{CheckInPeriod: day, GracePeriod: day, LastCheckIn: t0}
	now := t0.Add(day + time.Hour)
	first, rem1 := a.StatusAt(now)
	for i := 0; i < 5; i++ {
		got, rem := a.StatusAt(now)
		require.Equal(t, first, got)
		require.Equal(t, rem1, rem)
	}
}
