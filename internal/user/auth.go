package user

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

// HashPassword bcrypt-hashes password. bcrypt ignores input past 72
// bytes, so longer passwords are rejected instead of silently truncated.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
