// Package services contains server-side business logic. This file implements
// IdentityService, which handles registration, login, and issuing/refreshing
// JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/cryptox"
	"github.com/dmitrijs2005/heirloom/internal/dbx"
	"github.com/dmitrijs2005/heirloom/internal/server/auth"
	"github.com/dmitrijs2005/heirloom/internal/server/config"
	"github.com/dmitrijs2005/heirloom/internal/server/models"
	"github.com/dmitrijs2005/heirloom/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IdentityService provides authentication-related operations:
// - Register: create API identities bound to account addresses
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewIdentityService constructs an IdentityService using repositories and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.Address, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Register creates a new identity for address with a salted argon2id verifier
// of password.
func (s *IdentityService) Register(ctx context.Context, address string, password []byte) (*models.Identity, error) {
	salt := common.GenerateRandByteArray(16)
	identity := &models.Identity{
		Address:  address,
		Salt:     salt,
		Verifier: cryptox.HashPassword(password, salt),
	}
	repo := s.repomanager.Identities(s.db)
	id, err := repo.Create(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("error creating identity: %v", err)
	}
	return id, nil
}

// Login verifies the password against the stored verifier and, on success,
// returns a new TokenPair. Unknown addresses and bad passwords are both
// reported as ErrorUnauthorized.
func (s *IdentityService) Login(ctx context.Context, address string, password []byte) (*TokenPair, error) {
	repo := s.repomanager.Identities(s.db)
	identity, err := repo.GetByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	candidate := cryptox.HashPassword(password, identity.Salt)
	if subtle.ConstantTimeCompare(identity.Verifier, candidate) != 1 {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, identity.Address, s.db)
}

// --- helpers below ---

func (s *IdentityService) generateAccessToken(address string) (string, error) {
	return auth.GenerateToken(address, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *IdentityService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *IdentityService) generateTokenPair(ctx context.Context, address string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(address)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, address, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
