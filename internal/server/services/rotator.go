package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/dbx"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
)

// TokenRotator exchanges an expired access token plus its paired refresh
// token for a fresh pair, burning the old refresh token.
type TokenRotator struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	codec  *auth.Codec
	issuer *TokenIssuer
}

func NewTokenRotator(db *sql.DB, rm repomanager.RepositoryManager, codec *auth.Codec, issuer *TokenIssuer) *TokenRotator {
	return &TokenRotator{db: db, rm: rm, codec: codec, issuer: issuer}
}

// Rotate validates the presented pair and, if every check passes, marks the
// stored refresh token used and issues a replacement inside one transaction.
//
// Checks run strictly in order and short-circuit, each with its own error:
// decode, access-token-actually-expired, record lookup, used/revoked/expired
// record, and finally jti binding. The ordering matters: a well-formed but
// still-valid access token is rejected before the refresh token is even
// looked up, and the pair-binding check comes last so mismatched pairs of
// individually valid tokens don't leak which side failed earlier.
func (r *TokenRotator) Rotate(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	// signature and algorithm only; expiry is checked against now below
	claims, err := r.codec.Decode(accessToken, auth.RotationPolicy())
	if err != nil {
		return nil, common.ErrMalformedAccessToken
	}

	if claims.ExpiresAt == nil {
		return nil, common.ErrMalformedAccessToken
	}
	if claims.ExpiresAt.After(time.Now()) {
		// rotation is only for tokens that have actually expired
		return nil, common.ErrAccessTokenNotExpired
	}

	stored, err := r.rm.RefreshTokens(r.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownRefreshToken
		}
		return nil, common.ErrorInternal
	}

	switch {
	case stored.IsUsed:
		return nil, common.ErrRefreshTokenUsed
	case stored.IsRevoked:
		return nil, common.ErrRefreshTokenRevoked
	case !stored.ExpiresAt.After(time.Now()):
		return nil, common.ErrRefreshTokenExpired
	}

	if stored.JwtID != claims.ID {
		return nil, common.ErrTokenPairMismatch
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		updated, err := r.rm.RefreshTokens(tx).MarkUsed(ctx, stored.ID)
		if err != nil {
			return err
		}
		if !updated {
			// a concurrent rotation got here first
			return common.ErrRefreshTokenUsed
		}

		user, err := r.rm.Users(tx).GetByID(ctx, stored.UserID)
		if err != nil {
			return err
		}

		pair, err = r.issuer.Issue(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenUsed) {
			return nil, common.ErrRefreshTokenUsed
		}
		return nil, common.ErrorInternal
	}

	return pair, nil
}
