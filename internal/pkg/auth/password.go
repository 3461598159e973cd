package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

// BcryptCost is the hashing cost used for stored passwords
const BcryptCost = 12

// HashPassword hashes a plaintext password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a plaintext candidate
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidatePasswordStrength requires 8+ characters with at least one letter and one digit
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return apperrors.Wrap(apperrors.ErrInvalidPassword, "password must be at least 8 characters long")
	}

	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return apperrors.Wrap(apperrors.ErrInvalidPassword, "password must contain at least one letter")
	}
	if !hasDigit {
		return apperrors.Wrap(apperrors.ErrInvalidPassword, "password must contain at least one digit")
	}
	return nil
}
