// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"authd/config"
	domainerrors "authd/internal/domain/errors"
	"authd/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost     int
	strength *config.PasswordStrengthConfig
}

// NewBcryptHasher builds a hasher from config. A nil Auth section falls back
// to bcrypt.DefaultCost; a nil PasswordStrength section disables strength
// checking so any non-empty password is accepted.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.Auth.BcryptCost
	}

	return &bcryptHasher{
		cost:     cost,
		strength: cfg.PasswordStrength,
	}
}

// NewBcryptHasherWithCost builds a hasher with an explicit cost and no
// strength policy. Used by tests that need a cheap cost factor.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if err := h.ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength enforces the configured strength policy.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	if h.strength == nil {
		return nil
	}

	if len(password) < h.strength.MinLength {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must be at least " + strconv.Itoa(h.strength.MinLength) + " characters long")
	}
	if h.strength.RequireLowercase && !hasRune(password, unicode.IsLower) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain at least one lowercase letter")
	}
	if h.strength.RequireUppercase && !hasRune(password, unicode.IsUpper) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain at least one uppercase letter")
	}
	if h.strength.RequireNumbers && !hasRune(password, unicode.IsDigit) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain at least one number")
	}
	if h.strength.RequireSpecial && !hasRune(password, isSpecialChar) {
		return domainerrors.ErrPasswordStrength.WrapMessage("password must contain at least one special character")
	}

	return nil
}

func hasRune(s string, pred func(rune) bool) bool {
	return strings.ContainsFunc(s, pred)
}

func isSpecialChar(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
