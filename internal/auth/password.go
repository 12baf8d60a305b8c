package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor: 2^12 rounds, roughly 250ms per hash.
// Slow on purpose, so a stolen users table is expensive to brute-force.
const defaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer input is silently
// truncated by the algorithm, so we refuse it up front.
const maxPasswordBytes = 72

var (
	// ErrInvalidPassword is returned by Verify on a mismatch.
	ErrInvalidPassword = errors.New("auth: invalid password")

	// ErrPasswordTooLong is returned by Hash for input bcrypt would truncate.
	ErrPasswordTooLong = fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
)

// PasswordService hashes and verifies account passwords. Only the
// account-backed authenticator uses it; the default local sign-in never
// looks at the password.
type PasswordService struct {
	cost int
}

func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost lets tests drop to bcrypt.MinCost so a hash
// takes milliseconds.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash, ErrInvalidPassword on a
// mismatch, and a wrapped error when the hash itself is malformed.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
