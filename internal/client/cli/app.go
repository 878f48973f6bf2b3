package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/client/api"
	"github.com/dmitrijs2005/heirloom/internal/client/config"
	"github.com/dmitrijs2005/heirloom/internal/client/storage"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// backend is the server API surface the App needs. *api.Client satisfies it;
// tests can provide a stub.
type backend interface {
	Register(ctx context.Context, address, password string) error
	Login(ctx context.Context, address, password string) error
	Tokens() api.TokenPair
	SetTokens(t api.TokenPair)
	Reachable(ctx context.Context) error

	RegisterAccount(ctx context.Context, name string, checkIn, grace time.Duration) error
	Ping(ctx context.Context) error
	Deposit(ctx context.Context, amount uint64) error
	Status(ctx context.Context, address string) (*api.StatusInfo, error)
	Balance(ctx context.Context, address string) (uint64, error)
	MarkDeceased(ctx context.Context, address string) error

	AddCouncilMember(ctx context.Context, member string) error
	RemoveCouncilMember(ctx context.Context, member string) error
	Serving(ctx context.Context) ([]string, error)
	Vote(ctx context.Context, address string, alive bool) error
	VoteTally(ctx context.Context, address string) (*protocol.Tally, error)

	AddMessage(ctx context.Context, content api.MessageContent) (int, error)
	Claim(ctx context.Context, address string, index int) error
	Retrieve(ctx context.Context, address string, index int) (*api.RetrievedMessage, error)
}

type App struct {
	config  *config.Config
	server  backend
	store   *storage.Repositories
	address string
	Mode    Mode
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	store, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	app := &App{
		config: c,
		server: api.New(c.ServerEndpointAddr),
		store:  store,
		reader: bufio.NewReader(os.Stdin),
	}
	app.restoreSession(ctx)

	return app, nil
}

// restoreSession reinstalls a previously saved login so the user does not
// have to authenticate on every start.
func (a *App) restoreSession(ctx context.Context) {
	s, err := a.store.Session.Load(ctx)
	if err != nil {
		log.Printf("error loading session: %s", err.Error())
		return
	}
	if s == nil {
		return
	}
	a.address = s.Address
	a.server.SetTokens(api.TokenPair{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken})
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	log.Println("Welcome to Heirloom CLI (type 'help' for commands)")

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.address != ""
}

func (a *App) getStatus() string {
	s := ""
	if a.address != "" {
		s = a.address + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.server.Reachable(probeCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
