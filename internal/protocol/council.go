package protocol

import "time"

// addCouncilMember appends a member to the caller's roster and updates the
// reverse index in the same operation.
func (s *State) addCouncilMember(caller string, now time.Time, p CouncilMemberParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if p.Member == caller {
		return nil, ErrSelfCouncil
	}
	if p.Member == "" {
		return nil, ErrUnknownMember
	}
	if len(a.Council) >= MaxCouncilSize {
		return nil, ErrCouncilFull
	}
	for _, m := range a.Council {
		if m.Address == p.Member {
			return nil, ErrDuplicateMember
		}
	}
	a.Council = append(a.Council, &CouncilMember{Address: p.Member, JoinedAt: now})
	if s.memberOf[p.Member] == nil {
		s.memberOf[p.Member] = make(map[string]struct{})
	}
	s.memberOf[p.Member][caller] = struct{}{}
	return &Result{Events: []Event{
		{Type: EventCouncilMemberAdded, Data: CouncilEventData{Address: caller, Member: p.Member}},
	}}, nil
}

// removeCouncilMember drops a member from the caller's roster. If the member
// has an undecided ballot in flight, the ballot is retracted and the tally
// decremented so totals stay consistent with the shrunken roster.
func (s *State) removeCouncilMember(caller string, _ time.Time, p CouncilMemberParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, m := range a.Council {
		if m.Address == p.Member {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownMember
	}
	a.Council = append(a.Council[:idx], a.Council[idx+1:]...)
	delete(s.memberOf[p.Member], caller)
	if len(s.memberOf[p.Member]) == 0 {
		delete(s.memberOf, p.Member)
	}
	if !a.Vote.Decided {
		if alive, voted := a.Vote.Ballots[p.Member]; voted {
			delete(a.Vote.Ballots, p.Member)
			if alive {
				a.Vote.Alive--
			} else {
				a.Vote.Dead--
			}
		}
	}
	return &Result{Events: []Event{
		{Type: EventCouncilMemberRemoved, Data: CouncilEventData{Address: caller, Member: p.Member}},
	}}, nil
}

// voteOnStatus records one ballot in the account's current grace window.
// Majority is floor(n/2)+1 of the roster at the time of the deciding vote.
// An alive majority confirms the account (FinalAlive, check-in reset); a dead
// majority declares death with the deciding voter as notifier.
func (s *State) voteOnStatus(caller string, now time.Time, p VoteParams) (*Result, error) {
	a, err := s.account(p.Account)
	if err != nil {
		return nil, err
	}
	onRoster := false
	for _, m := range a.Council {
		if m.Address == caller {
			onRoster = true
			break
		}
	}
	if !onRoster {
		return nil, ErrNotCouncilMember
	}
	if status, _ := a.StatusAt(now); status != StatusGrace {
		return nil, ErrNotInGrace
	}
	if a.Vote.Decided {
		return nil, ErrVoteDecided
	}
	if _, voted := a.Vote.Ballots[caller]; voted {
		return nil, ErrAlreadyVoted
	}

	a.Vote.Ballots[caller] = p.Alive
	if p.Alive {
		a.Vote.Alive++
	} else {
		a.Vote.Dead++
	}
	events := []Event{
		{Type: EventVoteCast, Data: VoteCastEventData{
			Address: p.Account, Member: caller, Alive: p.Alive, Epoch: a.Vote.Epoch,
		}},
	}

	majority := len(a.Council)/2 + 1
	switch {
	case a.Vote.Alive >= majority:
		a.Vote.Decided = true
		a.Vote.DecisionAlive = true
		a.FinalAlive = true
		a.LastCheckIn = now
		events = append(events, Event{Type: EventVoteDecided, Data: VoteDecidedEventData{
			Address: p.Account, Alive: true, Epoch: a.Vote.Epoch,
		}})
	case a.Vote.Dead >= majority:
		a.Vote.Decided = true
		a.Vote.DecisionAlive = false
		a.Deceased = true
		a.Notifier = caller
		a.NotifiedAt = now
		events = append(events, Event{Type: EventVoteDecided, Data: VoteDecidedEventData{
			Address: p.Account, Alive: false, Epoch: a.Vote.Epoch,
		}})
	}
	return &Result{Events: events}, nil
}
