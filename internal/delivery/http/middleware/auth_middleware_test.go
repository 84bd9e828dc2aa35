package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authd/internal/delivery/http/cookie"
	"authd/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokenService accepts exactly one token string.
type stubTokenService struct {
	validToken string
	userID     uuid.UUID
}

func (s *stubTokenService) GenerateTokens(uuid.UUID) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (s *stubTokenService) GenerateAccessToken(uuid.UUID) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubTokenService) ValidateAccessToken(token string) (*service.Claims, error) {
	if token != s.validToken {
		return nil, errors.New("invalid token")
	}

	return &service.Claims{UserID: s.userID, Type: service.TokenTypeAccess}, nil
}

func (s *stubTokenService) ValidateRefreshToken(string) (*service.Claims, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTokenService) HashToken(token string) string { return token }

func (s *stubTokenService) AccessTokenDuration() time.Duration { return 25 * time.Minute }

func (s *stubTokenService) RefreshTokenDuration() time.Duration { return 7 * 24 * time.Hour }

func runAuthenticate(t *testing.T, tokenSvc service.TokenService, req *http.Request) (*httptest.ResponseRecorder, bool, any) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var reachedHandler bool
	next := func(c echo.Context) error {
		reachedHandler = true

		return c.NoContent(http.StatusOK)
	}

	mw := NewAuthMiddleware(tokenSvc)
	err := mw.Authenticate(next)(c)
	require.NoError(t, err)

	return rec, reachedHandler, c.Get(ContextKeyUserID)
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	tokenSvc := &stubTokenService{validToken: "good", userID: uuid.New()}
	req := httptest.NewRequest(http.MethodGet, "/user", nil)

	rec, reachedHandler, _ := runAuthenticate(t, tokenSvc, req)

	assert.False(t, reachedHandler)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAuthMiddleware_EmptyCookie(t *testing.T) {
	tokenSvc := &stubTokenService{validToken: "good", userID: uuid.New()}
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: cookie.AccessTokenName, Value: ""})

	rec, reachedHandler, _ := runAuthenticate(t, tokenSvc, req)

	assert.False(t, reachedHandler)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokenSvc := &stubTokenService{validToken: "good", userID: uuid.New()}
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: cookie.AccessTokenName, Value: "tampered"})

	rec, reachedHandler, _ := runAuthenticate(t, tokenSvc, req)

	assert.False(t, reachedHandler)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	tokenSvc := &stubTokenService{validToken: "good", userID: userID}
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: cookie.AccessTokenName, Value: "good"})

	rec, reachedHandler, ctxUserID := runAuthenticate(t, tokenSvc, req)

	assert.True(t, reachedHandler)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, ctxUserID)
}
