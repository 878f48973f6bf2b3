// Package server initializes and runs the main application server: database,
// journal replay, and the REST endpoint, with graceful shutdown on signals.
package server

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/heirloom/internal/confidential"
	"github.com/dmitrijs2005/heirloom/internal/event"
	"github.com/dmitrijs2005/heirloom/internal/logging"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/dmitrijs2005/heirloom/internal/server/config"
	"github.com/dmitrijs2005/heirloom/internal/server/engine"
	"github.com/dmitrijs2005/heirloom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/heirloom/internal/server/rest"
	"github.com/dmitrijs2005/heirloom/internal/server/services"
	"github.com/dmitrijs2005/heirloom/internal/verifier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	engine   *engine.Engine
	rest     *rest.RestServer
	bus      *event.EventBus
	registry *prometheus.Registry
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	masterKey, err := hex.DecodeString(cfg.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("invalid master key: %w", err)
	}
	vault := confidential.NewPostgresStore(db, masterKey)

	var ver verifier.Verifier
	if cfg.AttestorPublicKey != "" {
		pub, err := hex.DecodeString(cfg.AttestorPublicKey)
		if err != nil {
			return nil, fmt.Errorf("invalid attestor public key: %w", err)
		}
		ver = verifier.NewEd25519Attestor(ed25519.PublicKey(pub))
	}

	trusted := make([]protocol.Commitment, 0, len(cfg.TrustedAuthKeys))
	for _, k := range cfg.TrustedAuthKeys {
		c, err := protocol.ParseCommitment(k)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted auth key %q: %w", k, err)
		}
		trusted = append(trusted, c)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	bus := event.NewEventBus(registry, logger)

	eng := engine.New(rm.Journal(db), vault, ver, bus, logger, trusted)

	ids := services.NewIdentityService(db, rm, cfg)
	restServer := rest.NewRestServer(cfg.EndpointAddr, logger, eng, ids, cfg.SecretKey, registry)

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		engine:   eng,
		rest:     restServer,
		bus:      bus,
		registry: registry,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.engine.Replay(ctx); err != nil {
		app.logger.Error(ctx, "journal replay failed", "err", err)
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.rest.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.bus.Stop()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "err", err)
	}
}
