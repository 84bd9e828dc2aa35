package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"time"

	"authd/internal/domain/entity"
	"authd/internal/domain/repository"
	"authd/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- In-memory repository fakes ---

type fakeUserRepo struct {
	byID    map[uuid.UUID]*entity.User
	byEmail map[string]*entity.User

	findByEmailErr error
	createErr      error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*entity.User),
		byEmail: make(map[string]*entity.User),
	}
}

func (r *fakeUserRepo) add(user *entity.User) {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.findByEmailErr != nil {
		return nil, r.findByEmailErr
	}
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return errors.New("duplicate email")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.add(user)

	return nil
}

type fakeRefreshTokenRepo struct {
	byHash map[string]*entity.RefreshToken

	createErr error
	deleteErr error
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{byHash: make(map[string]*entity.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	if r.createErr != nil {
		return r.createErr
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	r.byHash[token.TokenHash] = token

	return nil
}

func (r *fakeRefreshTokenRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	token, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if token.ExpiresAt.Before(time.Now()) {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

func (r *fakeRefreshTokenRepo) DeleteRefreshTokenByHash(_ context.Context, tokenHash string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byHash[tokenHash]; !ok {
		return repository.ErrRefreshTokenNotFound
	}
	delete(r.byHash, tokenHash)

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpiredRefreshTokens(_ context.Context) (int64, error) {
	var deleted int64
	now := time.Now()
	for hash, token := range r.byHash {
		if token.ExpiresAt.Before(now) {
			delete(r.byHash, hash)
			deleted++
		}
	}

	return deleted, nil
}

// fakeTxManager runs the callback immediately against a factory backed by the
// fakes above; there is no real transaction to roll back.
type fakeTxManager struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *fakeTxManager) UserRepo() repository.UserRepository {
	return m.userRepo
}

func (m *fakeTxManager) RefreshTokenRepo() repository.RefreshTokenRepository {
	return m.refreshTokenRepo
}

// --- Service fakes ---

// fakeHasher marks hashes with a prefix instead of doing real bcrypt work.
type fakeHasher struct {
	strengthErr error
	hashErr     error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.strengthErr != nil {
		return "", h.strengthErr
	}
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

func (h *fakeHasher) ValidatePasswordStrength(string) error {
	return h.strengthErr
}

// fakeTokenService issues opaque strings and validates by prefix.
type fakeTokenService struct {
	generateErr error
	validateErr error
	counter     int
}

func (s *fakeTokenService) GenerateTokens(userID uuid.UUID) (string, string, error) {
	if s.generateErr != nil {
		return "", "", s.generateErr
	}
	s.counter++

	return "access:" + userID.String(), "refresh:" + userID.String() + ":" + hex.EncodeToString([]byte{byte(s.counter)}), nil
}

func (s *fakeTokenService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}

	return "access:" + userID.String(), nil
}

func (s *fakeTokenService) ValidateAccessToken(token string) (*service.Claims, error) {
	return s.validate(token, "access:")
}

func (s *fakeTokenService) ValidateRefreshToken(token string) (*service.Claims, error) {
	return s.validate(token, "refresh:")
}

func (s *fakeTokenService) validate(token, prefix string) (*service.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	if len(token) < len(prefix)+36 || token[:len(prefix)] != prefix {
		return nil, errors.New("malformed token")
	}
	userID, err := uuid.Parse(token[len(prefix) : len(prefix)+36])
	if err != nil {
		return nil, errors.Wrap(err, "malformed token subject")
	}

	return &service.Claims{UserID: userID}, nil
}

func (s *fakeTokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

func (s *fakeTokenService) AccessTokenDuration() time.Duration {
	return 25 * time.Minute
}

func (s *fakeTokenService) RefreshTokenDuration() time.Duration {
	return 7 * 24 * time.Hour
}

// --- Fixture ---

type authServiceFixtures struct {
	service          *authService
	userRepo         *fakeUserRepo
	refreshTokenRepo *fakeRefreshTokenRepo
	hasher           *fakeHasher
	tokenService     *fakeTokenService
}

func createTestAuthService() authServiceFixtures {
	userRepo := newFakeUserRepo()
	refreshTokenRepo := newFakeRefreshTokenRepo()
	hasher := &fakeHasher{}
	tokenService := &fakeTokenService{}
	txManager := &fakeTxManager{userRepo: userRepo, refreshTokenRepo: refreshTokenRepo}

	svc := &authService{
		txManager:        txManager,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		tokenService:     tokenService,
		logger:           newDiscardLogger(),
	}

	return authServiceFixtures{
		service:          svc,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		hasher:           hasher,
		tokenService:     tokenService,
	}
}
