package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// getDuration prompts for a Go duration string like "720h".
func getDuration(reader *bufio.Reader, prompt string) (time.Duration, error) {
	s, err := getSimpleText(reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

func getInt(reader *bufio.Reader, prompt string) (int, error) {
	s, err := getSimpleText(reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return n, nil
}

// Activate registers the posthumous-release account for the logged-in
// identity, with a display name and the check-in and grace periods.
func (a *App) Activate(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	checkIn, err := getDuration(a.reader, "Enter check-in period (e.g. 720h)")
	if err != nil {
		return err
	}
	grace, err := getDuration(a.reader, "Enter grace period (e.g. 168h)")
	if err != nil {
		return err
	}

	if err := a.server.RegisterAccount(ctx, name, checkIn, grace); err != nil {
		return err
	}

	printlnFn("Success!")
	return nil
}

// CheckIn resets the liveness timer for the logged-in account.
func (a *App) CheckIn(ctx context.Context) error {
	if err := a.server.Ping(ctx); err != nil {
		return err
	}
	printlnFn("Checked in.")
	return nil
}

// Status shows the derived liveness status of an account. An empty address
// defaults to the logged-in account.
func (a *App) Status(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter address (empty for your own)", os.Stdout)
	if err != nil {
		return err
	}
	if address == "" {
		address = a.address
	}

	st, err := a.server.Status(ctx, address)
	if err != nil {
		return err
	}

	if st.Remaining != "" {
		printlnFn(fmt.Sprintf("%s: %s (%s remaining)", address, st.Status, st.Remaining))
	} else {
		printlnFn(fmt.Sprintf("%s: %s", address, st.Status))
	}
	return nil
}

// Deposit tops up the reward balance of the logged-in account.
func (a *App) Deposit(ctx context.Context) error {
	s, err := getSimpleText(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if err := a.server.Deposit(ctx, amount); err != nil {
		return err
	}

	balance, err := a.server.Balance(ctx, a.address)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("New balance: %d", balance))
	return nil
}

// DeclareDeath reports an account as deceased.
func (a *App) DeclareDeath(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter address", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.server.MarkDeceased(ctx, address); err != nil {
		return err
	}
	printlnFn("Recorded.")
	return nil
}
