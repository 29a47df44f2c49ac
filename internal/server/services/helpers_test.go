package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authgate/internal/dbx"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/authgate/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/authgate/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		Issuer:                       "authgate",
		Audience:                     "authgate-clients",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		RefreshTokenLength:           32,
	}
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

type fakeRefreshRepo struct {
	created   []*models.RefreshToken
	createErr error

	findOut   *models.RefreshToken
	findErr   error
	findCalls int

	markUsedOut   bool
	markUsedErr   error
	markUsedCalls int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *models.RefreshToken) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	token.ID = "rt-new"
	f.created = append(f.created, token)
	return token.ID, nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) MarkUsed(ctx context.Context, id string) (bool, error) {
	f.markUsedCalls++
	if f.markUsedErr != nil {
		return false, f.markUsedErr
	}
	if f.markUsedOut && f.findOut != nil && f.findOut.ID == id {
		// behave like the conditional update: only the first call transitions
		if f.findOut.IsUsed {
			return false, nil
		}
		f.findOut.IsUsed = true
		return true, nil
	}
	return f.markUsedOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
