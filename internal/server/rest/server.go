// Package rest exposes the protocol engine and the identity service over
// HTTP. Routing is gorilla/mux; authenticated routes carry the caller's
// account address in a JWT.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/logging"
	"github.com/dmitrijs2005/heirloom/internal/server/engine"
	"github.com/dmitrijs2005/heirloom/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type RestServer struct {
	address    string
	engine     *engine.Engine
	identities *services.IdentityService
	logger     logging.Logger
	jwtSecret  []byte
	registry   *prometheus.Registry
	router     *mux.Router
}

func NewRestServer(address string, l logging.Logger, eng *engine.Engine, ids *services.IdentityService, secretKey string, registry *prometheus.Registry) *RestServer {
	s := &RestServer{
		address:    address,
		engine:     eng,
		identities: ids,
		logger:     l.With("module", "rest_server"),
		jwtSecret:  []byte(secretKey),
		registry:   registry,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the configured router, mainly for httptest.
func (s *RestServer) Handler() http.Handler { return s.router }

func (s *RestServer) buildRouter() *mux.Router {
	r := mux.NewRouter()

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Identity endpoints carry no token.
	api.HandleFunc("/auth/register", s.handleAuthRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleAuthLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleAuthRefresh).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	// Account lifecycle. The caller acts on its own account.
	authed.HandleFunc("/account", s.handleRegisterAccount).Methods(http.MethodPost)
	authed.HandleFunc("/account/ping", s.handlePing).Methods(http.MethodPost)
	authed.HandleFunc("/account/name", s.handleSetName).Methods(http.MethodPut)
	authed.HandleFunc("/account/periods", s.handleSetPeriods).Methods(http.MethodPut)
	authed.HandleFunc("/account/deposit", s.handleDeposit).Methods(http.MethodPost)

	// Views of any account.
	authed.HandleFunc("/accounts/{address}", s.handleGetAccount).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/status", s.handleGetStatus).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/balance", s.handleGetBalance).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/council", s.handleGetCouncil).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/votes", s.handleGetVoteTally).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/declare-death", s.handleMarkDeceased).Methods(http.MethodPost)
	authed.HandleFunc("/accounts/{address}/votes", s.handleVote).Methods(http.MethodPost)

	// Council management on the caller's account.
	authed.HandleFunc("/council/members", s.handleAddCouncilMember).Methods(http.MethodPost)
	authed.HandleFunc("/council/members/{member}", s.handleRemoveCouncilMember).Methods(http.MethodDelete)
	authed.HandleFunc("/council/serving", s.handleServing).Methods(http.MethodGet)

	// Messages.
	authed.HandleFunc("/messages", s.handleAddMessage).Methods(http.MethodPost)
	authed.HandleFunc("/messages/{index:[0-9]+}", s.handleEditMessage).Methods(http.MethodPut)
	authed.HandleFunc("/messages/{index:[0-9]+}", s.handleRevokeMessage).Methods(http.MethodDelete)
	authed.HandleFunc("/accounts/{address}/messages/{index:[0-9]+}", s.handleGetMessage).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/messages/{index:[0-9]+}/claim", s.handleClaim).Methods(http.MethodPost)
	authed.HandleFunc("/accounts/{address}/messages/{index:[0-9]+}/content", s.handleRetrieve).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/{address}/messages/{index:[0-9]+}/proofs", s.handleProveDelivery).Methods(http.MethodPost)
	authed.HandleFunc("/accounts/{address}/messages/{index:[0-9]+}/reward-claim", s.handleClaimReward).Methods(http.MethodPost)

	return r
}

func (s *RestServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "err", err)
		}
	}()

	s.logger.Info(ctx, "Starting REST server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
