package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// AddCouncilMember appoints another identity to the caller's council.
func (a *App) AddCouncilMember(ctx context.Context) error {
	member, err := getSimpleText(a.reader, "Enter member address", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.server.AddCouncilMember(ctx, member); err != nil {
		return err
	}
	printlnFn("Appointed.")
	return nil
}

// RemoveCouncilMember dismisses a member from the caller's council.
func (a *App) RemoveCouncilMember(ctx context.Context) error {
	member, err := getSimpleText(a.reader, "Enter member address", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.server.RemoveCouncilMember(ctx, member); err != nil {
		return err
	}
	printlnFn("Dismissed.")
	return nil
}

// Serving lists the accounts whose councils the logged-in identity sits on.
func (a *App) Serving(ctx context.Context) error {
	accounts, err := a.server.Serving(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		printlnFn("Not serving on any council.")
		return nil
	}
	printlnFn("Serving:", strings.Join(accounts, ", "))
	return nil
}

// Vote casts a liveness vote for an account in its grace period.
func (a *App) Vote(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter account address", os.Stdout)
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, "Is the person alive? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	alive := strings.HasPrefix(strings.ToLower(answer), "y")

	if err := a.server.Vote(ctx, address, alive); err != nil {
		return err
	}

	tally, err := a.server.VoteTally(ctx, address)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Recorded. Current tally: %d alive / %d dead of %d", tally.Alive, tally.Dead, tally.RosterSize))
	return nil
}
