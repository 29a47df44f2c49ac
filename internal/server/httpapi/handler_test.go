package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/services"
)

type fakeAuthService struct {
	registerOut *models.User
	registerErr error

	loginOut *services.TokenPair
	loginErr error

	refreshOut *services.TokenPair
	refreshErr error

	authOut *auth.Claims
	authErr error

	currentOut *models.User
	currentErr error
}

func (f *fakeAuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshOut, nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authOut, nil
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.currentOut, nil
}

func newTestServer(svc AuthService) *Server {
	l := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(":0", l, svc, "*")
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeAuthService{})
	rec := doJSON(t, s.routes(), http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegister_Created(t *testing.T) {
	svc := &fakeAuthService{registerOut: &models.User{ID: "u1", Email: "u@example.com", Name: "U"}}
	s := newTestServer(svc)

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "u@example.com", Name: "U", Password: "pass123"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var got userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "u1" || got.Email != "u@example.com" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	s := newTestServer(&fakeAuthService{})

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "u@example.com"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(&fakeAuthService{registerErr: common.ErrEmailAlreadyExists})

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/register",
		registerRequest{Email: "u@example.com", Password: "pass123"}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLogin_ReturnsPair(t *testing.T) {
	svc := &fakeAuthService{loginOut: &services.TokenPair{AccessToken: "at", RefreshToken: "rt"}}
	s := newTestServer(svc)

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/login",
		loginRequest{Email: "u@example.com", Password: "pass123"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got tokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.AccessToken != "at" || got.RefreshToken != "rt" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(&fakeAuthService{loginErr: common.ErrInvalidCredentials})

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/login",
		loginRequest{Email: "u@example.com", Password: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var got errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Error != common.ErrInvalidCredentials.Error() {
		t.Fatalf("unexpected error message: %q", got.Error)
	}
}

func TestRefresh_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rotation succeeds", nil, http.StatusOK},
		{"malformed access token", common.ErrMalformedAccessToken, http.StatusUnauthorized},
		{"access token not expired", common.ErrAccessTokenNotExpired, http.StatusUnauthorized},
		{"unknown refresh token", common.ErrUnknownRefreshToken, http.StatusUnauthorized},
		{"already used", common.ErrRefreshTokenUsed, http.StatusUnauthorized},
		{"revoked", common.ErrRefreshTokenRevoked, http.StatusUnauthorized},
		{"expired", common.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{"pair mismatch", common.ErrTokenPairMismatch, http.StatusUnauthorized},
		{"store failure", common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{
				refreshOut: &services.TokenPair{AccessToken: "at2", RefreshToken: "rt2"},
				refreshErr: tt.err,
			}
			s := newTestServer(svc)

			rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/refresh",
				refreshRequest{AccessToken: "at", RefreshToken: "rt"}, nil)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRefresh_MissingFields(t *testing.T) {
	s := newTestServer(&fakeAuthService{})

	rec := doJSON(t, s.routes(), http.MethodPost, "/api/v1/auth/refresh",
		refreshRequest{AccessToken: "at"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMe_RequiresToken(t *testing.T) {
	s := newTestServer(&fakeAuthService{})

	rec := doJSON(t, s.routes(), http.MethodGet, "/api/v1/auth/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMe_ReturnsCurrentUser(t *testing.T) {
	svc := &fakeAuthService{
		authOut:    &auth.Claims{UserID: "u1"},
		currentOut: &models.User{ID: "u1", Email: "u@example.com"},
	}
	s := newTestServer(svc)

	rec := doJSON(t, s.routes(), http.MethodGet, "/api/v1/auth/me", nil,
		map[string]string{"Authorization": "Bearer some-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var got userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestMe_RejectsBadHeader(t *testing.T) {
	s := newTestServer(&fakeAuthService{authErr: common.ErrTokenExpired})

	rec := doJSON(t, s.routes(), http.MethodGet, "/api/v1/auth/me", nil,
		map[string]string{"Authorization": "Basic xyz"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
