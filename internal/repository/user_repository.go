package repository

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// UserRecord is a directory entry with its credential hash.
type UserRecord struct {
	domain.User
	PasswordHash string
}

// UserRepository is the read-only user directory. Returned users never
// carry credentials.
type UserRepository interface {
	GetByID(ctx context.Context, id string) *domain.User
	List(ctx context.Context) []domain.User
	Authenticate(ctx context.Context, username, password string) *domain.User
}

type userDirectory struct {
	records    []UserRecord
	byID       map[string]int
	byUsername map[string]int
}

// NewUserDirectory validates and indexes records. Order is preserved for
// List.
func NewUserDirectory(records []UserRecord) (UserRepository, error) {
	dir := &userDirectory{
		records:    make([]UserRecord, 0, len(records)),
		byID:       make(map[string]int, len(records)),
		byUsername: make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" || rec.Username == "" {
			return nil, fmt.Errorf("user %q: id and username required", rec.Name)
		}
		if !rec.Role.Valid() {
			return nil, fmt.Errorf("user %s: invalid role %q", rec.ID, rec.Role)
		}
		if (rec.Role == domain.RoleHQ) != (rec.Department != "") {
			return nil, fmt.Errorf("user %s: department must be set exactly for HQ users", rec.ID)
		}
		if _, dup := dir.byID[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate user id %s", rec.ID)
		}
		if _, dup := dir.byUsername[rec.Username]; dup {
			return nil, fmt.Errorf("duplicate username %s", rec.Username)
		}
		dir.byID[rec.ID] = len(dir.records)
		dir.byUsername[rec.Username] = len(dir.records)
		dir.records = append(dir.records, rec)
	}
	return dir, nil
}

// GetByID returns nil for an unknown id.
func (d *userDirectory) GetByID(_ context.Context, id string) *domain.User {
	idx, ok := d.byID[id]
	if !ok {
		return nil
	}
	user := d.records[idx].User
	return &user
}

func (d *userDirectory) List(_ context.Context) []domain.User {
	users := make([]domain.User, 0, len(d.records))
	for _, rec := range d.records {
		users = append(users, rec.User)
	}
	return users
}

// Authenticate returns the user whose credential matches, or nil.
func (d *userDirectory) Authenticate(_ context.Context, username, password string) *domain.User {
	idx, ok := d.byUsername[username]
	if !ok {
		return nil
	}
	rec := d.records[idx]
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil
	}
	user := rec.User
	return &user
}
