package protocol

import "time"

// Status is the derived liveness state of an account. It is a pure projection
// of stored flags and timestamps; nothing persists a Status value.
type Status int

const (
	StatusAlive Status = iota
	StatusGrace
	StatusDeceased
	StatusFinalAlive
)

func (s Status) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusGrace:
		return "grace"
	case StatusDeceased:
		return "deceased"
	case StatusFinalAlive:
		return "final_alive"
	default:
		return "unknown"
	}
}

// StatusAt derives the account's liveness status at the given instant.
// For StatusGrace the second return value is the time remaining until the
// grace deadline; it is zero for every other status.
//
// An account past its grace deadline is deceased de facto even when the
// Deceased flag is unset: claim and markDeceased both treat it as terminal.
func (a *Account) StatusAt(now time.Time) (Status, time.Duration) {
	if a.Deceased {
		return StatusDeceased, 0
	}
	if a.FinalAlive {
		return StatusFinalAlive, 0
	}
	deadline := a.LastCheckIn.Add(a.CheckInPeriod)
	if !now.After(deadline) {
		return StatusAlive, 0
	}
	graceDeadline := deadline.Add(a.GracePeriod)
	if !now.After(graceDeadline) {
		return StatusGrace, graceDeadline.Sub(now)
	}
	return StatusDeceased, 0
}
