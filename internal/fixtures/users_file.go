package fixtures

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type usersFile struct {
	Users []userEntry `toml:"users"`
}

type userEntry struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Role       string `toml:"role"`
	Department string `toml:"department"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
}

// LoadUsersFile reads a directory seed from a TOML file of [[users]] tables.
func LoadUsersFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file %s: %w", path, err)
	}
	return ParseUsers(data)
}

// ParseUsers decodes TOML seed content.
func ParseUsers(data []byte) ([]SeedUser, error) {
	var file usersFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}
	if len(file.Users) == 0 {
		return nil, fmt.Errorf("users file defines no users")
	}

	seed := make([]SeedUser, 0, len(file.Users))
	for _, e := range file.Users {
		if e.Password == "" {
			return nil, fmt.Errorf("user %s has no password", e.ID)
		}
		seed = append(seed, SeedUser{
			User: domain.User{
				ID:         e.ID,
				Name:       e.Name,
				Role:       domain.Role(e.Role),
				Department: e.Department,
				Username:   e.Username,
			},
			Password: e.Password,
		})
	}
	return seed, nil
}
