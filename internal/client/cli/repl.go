package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Activate(ctx context.Context) error
	CheckIn(ctx context.Context) error
	Status(ctx context.Context) error
	Deposit(ctx context.Context) error
	AddMessage(ctx context.Context) error
	Claim(ctx context.Context) error
	Retrieve(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	AddCouncilMember(ctx context.Context) error
	RemoveCouncilMember(ctx context.Context) error
	Serving(ctx context.Context) error
	Vote(ctx context.Context) error
	DeclareDeath(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Heirloom CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an identity
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - activate       — register the posthumous-release account
//	  - checkin        — reset the liveness timer
//	  - status         — show an account's derived status
//	  - deposit        — top up the reward balance
//	  - addmsg         — store an encrypted message
//	  - claim          — claim a released message
//	  - retrieve       — fetch released content into the local cache
//	  - list | l       — list locally cached messages
//	  - show           — show a single cached message
//	  - council-add    — appoint a council member
//	  - council-remove — dismiss a council member
//	  - serving        — list accounts this user serves as council for
//	  - vote           — cast a liveness vote
//	  - declare        — declare an account deceased
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Errors returned by command handlers are printed and the loop continues.
// This keeps the REPL resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	report := func(err error) {
		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}

	for {
		printlnFn(fmt.Sprintf("heirloom> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: activate, checkin, status, deposit, addmsg, claim, retrieve, (l)ist, show, council-add, council-remove, serving, vote, declare, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "activate":
			report(a.Activate(ctx))

		case "checkin":
			report(a.CheckIn(ctx))

		case "status":
			report(a.Status(ctx))

		case "deposit":
			report(a.Deposit(ctx))

		case "addmsg":
			report(a.AddMessage(ctx))

		case "claim":
			report(a.Claim(ctx))

		case "retrieve":
			report(a.Retrieve(ctx))

		case "l", "list":
			report(a.List(ctx))

		case "show":
			report(a.Show(ctx))

		case "council-add":
			report(a.AddCouncilMember(ctx))

		case "council-remove":
			report(a.RemoveCouncilMember(ctx))

		case "serving":
			report(a.Serving(ctx))

		case "vote":
			report(a.Vote(ctx))

		case "declare":
			report(a.DeclareDeath(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
