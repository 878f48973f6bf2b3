package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/heirloom/internal/client/api"
	"github.com/dmitrijs2005/heirloom/internal/client/models"
	"github.com/dmitrijs2005/heirloom/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// saveSession persists the current address and token pair so the next CLI
// start can resume without a password prompt.
func (a *App) saveSession(ctx context.Context) {
	tokens := a.server.Tokens()
	err := a.store.Session.Save(ctx, &models.Session{
		Address:      a.address,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
	if err != nil {
		log.Printf("error saving session: %s", err.Error())
	}
}

// Register prompts the user for an address and password and attempts to
// create a new identity on the server.
//
// On success it prints "Success!", stores the issued tokens and returns nil.
// The password byte slice is securely wiped before returning. Any I/O or
// server error is returned unchanged.
func (a *App) Register(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter address", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.server.Register(ctx, address, string(password)); err != nil {
		return err
	}

	a.address = address
	a.saveSession(ctx)
	a.setMode(ModeOnline)
	printlnFn("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
//
// If the server is unavailable (errors.Is(err, api.ErrUnavailable)) and the
// entered address matches the stored session, the CLI switches to offline
// mode with read-only access to the local cache. Any other failure leaves
// the session logged out in ModeDisabled.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	address, err := getSimpleText(a.reader, "Enter address", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.server.Login(ctx, address, string(password)); err != nil {
		if errors.Is(err, api.ErrUnavailable) && address == a.address {
			log.Printf("Server unavailable, continuing offline with the local cache")
			a.setMode(ModeOffline)
			return nil
		}
		a.setMode(ModeDisabled)
		return err
	}

	a.address = address
	a.saveSession(ctx)
	a.setMode(ModeOnline)
	log.Printf("Login successful")
	return nil
}

// Logout clears the stored session and forgets the in-memory tokens.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Session.Clear(ctx); err != nil {
		return err
	}
	a.address = ""
	a.server.SetTokens(api.TokenPair{})
	return nil
}
