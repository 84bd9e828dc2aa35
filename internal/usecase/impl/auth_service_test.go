package impl

import (
	"context"
	"testing"
	"time"

	"authd/internal/domain/entity"
	domainerrors "authd/internal/domain/errors"
	"authd/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Email:    "test@example.com",
		Password: "pw1",
	})

	require.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, "test@example.com", output.User.Email)
	assert.NotEqual(t, uuid.Nil, output.User.ID)
	assert.Equal(t, "hashed:pw1", output.User.PasswordHash)
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Email:    "  Alice@Example.COM ",
		Password: "pw1",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", output.User.Email)

	// Login with a different case variant still finds the account.
	loginOut, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "ALICE@example.com",
		Password: "pw1",
	})
	require.NoError(t, err)
	assert.Equal(t, output.User.ID, loginOut.User.ID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "dup@example.com", Password: "pw1"})
	require.NoError(t, err)

	fx.userRepo.createErr = domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")

	_, err = fx.service.Register(ctx, &usecase.RegisterInput{Email: "dup@example.com", Password: "pw2"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	fx := createTestAuthService()
	fx.hasher.strengthErr = domainerrors.ErrPasswordStrength.WrapMessage("too short")

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "weak@example.com",
		Password: "x",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Email:    "login@example.com",
		Password: "pw1",
	})
	require.NoError(t, err)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "login@example.com",
		Password: "pw1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)
	assert.Equal(t, registered.User.ID, output.User.ID)

	// The refresh token is persisted by hash, never raw.
	hash := fx.tokenService.HashToken(output.RefreshToken)
	stored, err := fx.refreshTokenRepo.FindRefreshTokenByHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, stored.UserID)
	assert.NotEqual(t, output.RefreshToken, stored.TokenHash)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	fx := createTestAuthService()

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "pw1",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "user@example.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "user@example.com", Password: "wrong"})

	// Indistinguishable from the unknown-email failure.
	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_CurrentUser_Success(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "me@example.com", Password: "pw1"})
	require.NoError(t, err)

	user, err := fx.service.CurrentUser(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", user.Email)
}

func TestAuthService_CurrentUser_Deleted(t *testing.T) {
	fx := createTestAuthService()

	_, err := fx.service.CurrentUser(context.Background(), uuid.New())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthService_Refresh_Success(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "r@example.com", Password: "pw1"})
	require.NoError(t, err)
	loginOut, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "r@example.com", Password: "pw1"})
	require.NoError(t, err)

	output, err := fx.service.Refresh(ctx, &usecase.RefreshInput{RefreshToken: loginOut.RefreshToken})

	require.NoError(t, err)
	assert.NotEmpty(t, output.AccessToken)

	// The refresh token is not rotated; the same session record survives.
	hash := fx.tokenService.HashToken(loginOut.RefreshToken)
	_, err = fx.refreshTokenRepo.FindRefreshTokenByHash(ctx, hash)
	assert.NoError(t, err)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	fx := createTestAuthService()

	_, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: "garbage"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestAuthService_Refresh_RevokedSession(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "rv@example.com", Password: "pw1"})
	require.NoError(t, err)
	loginOut, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "rv@example.com", Password: "pw1"})
	require.NoError(t, err)

	// Logout revokes the session server-side; the JWT itself is still valid.
	require.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken}))

	_, err = fx.service.Refresh(ctx, &usecase.RefreshInput{RefreshToken: loginOut.RefreshToken})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))
}

func TestAuthService_Refresh_ExpiredSession(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	registered, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "ex@example.com", Password: "pw1"})
	require.NoError(t, err)

	// Plant an already-expired session record directly.
	refreshToken := "refresh:" + registered.User.ID.String() + ":aa"
	fx.refreshTokenRepo.byHash[fx.tokenService.HashToken(refreshToken)] = &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    registered.User.ID,
		TokenHash: fx.tokenService.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err = fx.service.Refresh(ctx, &usecase.RefreshInput{RefreshToken: refreshToken})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))
}

func TestAuthService_Refresh_UserDeleted(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	userID := uuid.New()
	refreshToken := "refresh:" + userID.String() + ":aa"
	fx.refreshTokenRepo.byHash[fx.tokenService.HashToken(refreshToken)] = &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: fx.tokenService.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err := fx.service.Refresh(ctx, &usecase.RefreshInput{RefreshToken: refreshToken})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "lo@example.com", Password: "pw1"})
	require.NoError(t, err)
	loginOut, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "lo@example.com", Password: "pw1"})
	require.NoError(t, err)

	// First logout deletes the session record.
	require.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken}))
	assert.Empty(t, fx.refreshTokenRepo.byHash)

	// Repeated and tokenless logouts still succeed.
	assert.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken}))
	assert.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: ""}))
	assert.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: "not-a-token"}))
}

func TestAuthService_Logout_StoreFailure(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{Email: "lo@example.com", Password: "pw1"})
	require.NoError(t, err)
	loginOut, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "lo@example.com", Password: "pw1"})
	require.NoError(t, err)

	// Revocation is best effort: a store failure must not fail the logout.
	fx.refreshTokenRepo.deleteErr = domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "failed to delete refresh token")

	assert.NoError(t, fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken}))
}

func TestSessionJanitor_Sweep(t *testing.T) {
	refreshTokenRepo := newFakeRefreshTokenRepo()
	userID := uuid.New()

	refreshTokenRepo.byHash["live"] = &entity.RefreshToken{
		ID: uuid.New(), UserID: userID, TokenHash: "live", ExpiresAt: time.Now().Add(time.Hour),
	}
	refreshTokenRepo.byHash["dead"] = &entity.RefreshToken{
		ID: uuid.New(), UserID: userID, TokenHash: "dead", ExpiresAt: time.Now().Add(-time.Hour),
	}

	janitor := &sessionJanitor{
		refreshTokenRepo: refreshTokenRepo,
		interval:         time.Hour,
		logger:           newDiscardLogger(),
	}
	janitor.sweep(context.Background())

	assert.Len(t, refreshTokenRepo.byHash, 1)
	assert.Contains(t, refreshTokenRepo.byHash, "live")
}
