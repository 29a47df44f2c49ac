// Package services contains server-side business logic: issuing token
// pairs, rotating them, and orchestrating registration and login.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/dbx"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer mints a token pair for an authenticated identity: a signed
// access token and an opaque refresh token whose record is persisted with
// the access token's jti.
type TokenIssuer struct {
	rm                           repomanager.RepositoryManager
	codec                        *auth.Codec
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	refreshTokenLength           int
}

func NewTokenIssuer(rm repomanager.RepositoryManager, codec *auth.Codec, cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		rm:                           rm,
		codec:                        codec,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		refreshTokenLength:           cfg.RefreshTokenLength,
	}
}

// Issue creates a fresh pair for user against the given database handle
// (plain connection at login, open transaction during rotation). If the
// refresh record cannot be persisted, no pair is returned.
func (i *TokenIssuer) Issue(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenPair, error) {
	access, jti, err := i.codec.Encode(user.ID, user.Email, i.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandString(i.refreshTokenLength)
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := time.Now()
	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		JwtID:     jti,
		AddedAt:   now,
		ExpiresAt: now.Add(i.refreshTokenValidityDuration),
	}

	if _, err := i.rm.RefreshTokens(db).Create(ctx, record); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
