package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// AuthService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint token pairs
// - Refresh: rotate refresh tokens and mint new pairs
// - Authenticate: validate a presented access token
type AuthService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	codec   *auth.Codec
	issuer  *TokenIssuer
	rotator *TokenRotator
}

// NewAuthService constructs the service and its issuer/rotator collaborators
// from server config.
func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	codec := auth.NewCodec([]byte(cfg.SecretKey), cfg.Issuer, cfg.Audience)
	issuer := NewTokenIssuer(rm, codec, cfg)
	rotator := NewTokenRotator(db, rm, codec, issuer)

	return &AuthService{
		db:      db,
		rm:      rm,
		codec:   codec,
		issuer:  issuer,
		rotator: rotator,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	repo := s.rm.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrEmailAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := repo.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Login verifies the credentials and, on success, returns a new TokenPair.
// An unknown email and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.rm.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.issuer.Issue(ctx, s.db, user)
}

// Refresh delegates to the rotator.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	return s.rotator.Rotate(ctx, accessToken, refreshToken)
}

// Authenticate validates an access token under the strict policy and
// returns its claims.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	return s.codec.Decode(accessToken, auth.StrictPolicy())
}

// CurrentUser resolves the user behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.rm.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}
