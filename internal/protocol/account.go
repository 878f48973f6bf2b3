package protocol

import "time"

// register creates the caller's account. Zero periods fall back to the
// protocol defaults; explicit periods must be at least MinPeriod.
func (s *State) register(caller string, now time.Time, p RegisterParams) (*Result, error) {
	if _, ok := s.accounts[caller]; ok {
		return nil, ErrAlreadyRegistered
	}
	if len(p.Name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	checkIn := p.CheckInPeriod
	if checkIn == 0 {
		checkIn = DefaultCheckInPeriod
	}
	grace := p.GracePeriod
	if grace == 0 {
		grace = DefaultGracePeriod
	}
	if checkIn < MinPeriod || grace < MinPeriod {
		return nil, ErrPeriodTooShort
	}
	s.accounts[caller] = &Account{
		Address:       caller,
		Name:          p.Name,
		CheckInPeriod: checkIn,
		GracePeriod:   grace,
		LastCheckIn:   now,
		RegisteredOn:  now,
		Vote:          newGraceVote(0),
	}
	return &Result{Events: []Event{
		{Type: EventAccountRegistered, Data: AccountEventData{Address: caller}},
	}}, nil
}

// setName updates the display name. Allowed only while the account is Alive,
// i.e. before the current check-in deadline.
func (s *State) setName(caller string, now time.Time, p SetNameParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status != StatusAlive {
		return nil, ErrNotAlive
	}
	if len(p.Name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	a.Name = p.Name
	return &Result{Events: []Event{
		{Type: EventNameUpdated, Data: AccountEventData{Address: caller}},
	}}, nil
}

// setPeriods updates the check-in and grace periods, same window as setName.
func (s *State) setPeriods(caller string, now time.Time, p SetPeriodsParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status != StatusAlive {
		return nil, ErrNotAlive
	}
	if p.CheckInPeriod < MinPeriod || p.GracePeriod < MinPeriod {
		return nil, ErrPeriodTooShort
	}
	a.CheckInPeriod = p.CheckInPeriod
	a.GracePeriod = p.GracePeriod
	return &Result{Events: []Event{
		{Type: EventPeriodsUpdated, Data: AccountEventData{Address: caller}},
	}}, nil
}

// deposit credits the caller's free balance. The caller does not have to own
// an account: claimants receive payouts on plain balances too.
func (s *State) deposit(caller string, _ time.Time, p DepositParams) (*Result, error) {
	if p.Amount == 0 {
		return nil, ErrZeroAmount
	}
	s.balances[caller] += p.Amount
	return &Result{Events: []Event{
		{Type: EventDeposit, Data: DepositEventData{Address: caller, Amount: p.Amount}},
	}}, nil
}

// ping is the liveness check-in. It always moves LastCheckIn forward; if the
// account was in grace or confirmed alive by its council, the vote epoch is
// reset so the next grace window starts from a clean ballot.
func (s *State) ping(caller string, now time.Time, _ struct{}) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	status, _ := a.StatusAt(now)
	if status == StatusDeceased {
		return nil, ErrAccountDeceased
	}
	if status == StatusGrace || a.FinalAlive {
		a.Vote = newGraceVote(a.Vote.Epoch + 1)
	}
	a.FinalAlive = false
	a.LastCheckIn = now
	return &Result{Events: []Event{
		{Type: EventCheckIn, Data: AccountEventData{Address: caller}},
	}}, nil
}

// markDeceased flips the one-way deceased flag once the grace deadline has
// passed. Callable by anyone; the caller becomes the notifier and holds the
// exclusive claim window for the next NotifierWindow.
func (s *State) markDeceased(caller string, now time.Time, p MarkDeceasedParams) (*Result, error) {
	a, err := s.account(p.Account)
	if err != nil {
		return nil, err
	}
	if a.Deceased {
		return nil, ErrAccountDeceased
	}
	if a.FinalAlive {
		return nil, ErrFinalAlive
	}
	deadline := a.LastCheckIn.Add(a.CheckInPeriod).Add(a.GracePeriod)
	if !now.After(deadline) {
		return nil, ErrDeadlineNotPassed
	}
	a.Deceased = true
	a.Notifier = caller
	a.NotifiedAt = now
	return &Result{Events: []Event{
		{Type: EventDeathDeclared, Data: DeathDeclaredEventData{Address: p.Account, Notifier: caller}},
	}}, nil
}
