// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "authd/internal/delivery/context"
	"authd/internal/domain/entity"
	domainerrors "authd/internal/domain/errors"
	"authd/internal/domain/repository"
	"authd/internal/domain/service"
	"authd/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// canonicalEmail normalizes an email to its stored form. All lookups and
// writes go through this, so case variants of one address collide as intended.
func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account with a hashed password.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := canonicalEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Email:        email,
		PasswordHash: hashedPassword,
	}

	// The unique email index arbitrates duplicates; no read-then-insert race.
	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		srv.log(ctx).Warn("Failed to create user during registration", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login verifies credentials and issues a new token pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := canonicalEmail(input.Email)
	srv.log(ctx).Debug("Starting user login", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.Any("error", err))

		// Unknown email and bad password produce the same response so
		// callers cannot probe which addresses are registered.
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	// Check password outside any transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(user.ID)
	if err != nil {
		srv.log(ctx).Error("Login failed", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	if err := srv.storeRefreshToken(ctx, user.ID, refreshTokenString); err != nil {
		srv.log(ctx).Error("Login failed", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create refresh token during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user,
	}, nil
}

// CurrentUser returns the identity record for the authenticated caller.
func (srv *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		srv.log(ctx).Warn("Failed to load current user", slog.Any("userID", userID), slog.Any("error", err))

		if errors.Is(err, repository.ErrUserNotFound) {
			// A valid token for a deleted user; treat as not found.
			return nil, domainerrors.ErrUserNotFound.WrapMessage("user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// Refresh validates a refresh token and issues a new access token.
// The refresh token remains unchanged; rotation is deliberately avoided.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Info("Attempting to refresh access token")

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh token validation failed", slog.Any("error", err))

		return nil, domainerrors.ErrInvalidToken.WrapMessage("invalid refresh token")
	}

	var newAccessToken string

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		refreshRepo := repoFactory.RefreshTokenRepo()

		// 1. Verify the refresh token still exists server-side. A logged-out
		// session fails here even though the JWT itself is still valid.
		tokenHash := srv.tokenService.HashToken(input.RefreshToken)

		if _, err := refreshRepo.FindRefreshTokenByHash(ctx, tokenHash); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
				return domainerrors.ErrRefreshTokenRevoked.WrapMessage("refresh token not found or expired")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		// 2. Confirm the user still exists.
		user, err := userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidToken.WrapMessage("user no longer exists")
			}

			return errors.Wrap(err, "failed to find user")
		}

		// 3. Generate only a new access token.
		newAccessToken, err = srv.tokenService.GenerateAccessToken(user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate new access token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to refresh access token", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Access token refreshed", slog.Any("userID", claims.UserID))

	return &usecase.RefreshOutput{AccessToken: newAccessToken}, nil
}

// Logout invalidates the session by deleting its refresh token record.
// Logout is idempotent: an unknown, expired or missing token still succeeds.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	srv.log(ctx).Info("Attempting to log out")

	if input.RefreshToken == "" {
		// Nothing to revoke server-side; cookie clearing is the caller's job.
		return nil
	}

	if _, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken); err != nil {
		// Even if the token is invalid, proceed to delete its hash from the database.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	// Single operation - use direct repository instance
	if err := srv.refreshTokenRepo.DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			srv.log(ctx).Debug("Logout for already-revoked session")

			return nil
		}
		// Revocation is best effort: the session record expires on its own,
		// so a store failure must not keep the client logged in.
		srv.log(ctx).Error("Failed to delete refresh token", slog.Any("error", err))

		return nil
	}
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// storeRefreshToken hashes and persists a refresh token as a session record.
func (srv *authService) storeRefreshToken(ctx context.Context, userID uuid.UUID, refreshTokenString string) error {
	refreshTokenHash := srv.tokenService.HashToken(refreshTokenString)

	newRefreshToken := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: refreshTokenHash,
		ExpiresAt: time.Now().Add(srv.tokenService.RefreshTokenDuration()),
	}

	if err := srv.refreshTokenRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return errors.Wrap(err, "failed to store refresh token")
	}

	return nil
}
