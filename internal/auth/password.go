package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/fixtures"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// HashSeed turns plaintext seed users into directory records.
func HashSeed(seed []fixtures.SeedUser, cost int) ([]repository.UserRecord, error) {
	records := make([]repository.UserRecord, 0, len(seed))
	for _, u := range seed {
		hash, err := HashPassword(u.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		records = append(records, repository.UserRecord{User: u.User, PasswordHash: hash})
	}
	return records, nil
}
