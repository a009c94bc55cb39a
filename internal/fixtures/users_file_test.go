package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const sample = `
[[users]]
id = "u1"
name = "Ops Person"
role = "OperationStaff"
username = "ops"
password = "secret"

[[users]]
id = "u2"
name = "HQ Person"
role = "HQ"
department = "Finance"
username = "hq"
password = "secret"
`

func TestLoadUsersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.toml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	users, err := LoadUsersFile(path)
	if err != nil {
		t.Fatalf("LoadUsersFile: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if got := users[1]; got.Role != domain.RoleHQ || got.Department != "Finance" || got.Password != "secret" {
		t.Errorf("users[1] = %+v", got)
	}
	if users[0].Department != "" {
		t.Errorf("users[0].Department = %q, want empty", users[0].Department)
	}
}

func TestParseUsersErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       ``,
		"bad toml":    `[[users]`,
		"no password": "[[users]]\nid = \"u1\"\nusername = \"x\"\nrole = \"Admin\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseUsers([]byte(content)); err == nil {
				t.Fatal("ParseUsers succeeded")
			}
		})
	}
}

func TestLoadUsersFileMissing(t *testing.T) {
	if _, err := LoadUsersFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("LoadUsersFile succeeded for a missing file")
	}
}

func TestFixtureShape(t *testing.T) {
	if got := len(Users()); got != 5 {
		t.Errorf("len(Users()) = %d, want 5", got)
	}
	if got := len(Tickets()); got != 5 {
		t.Errorf("len(Tickets()) = %d, want 5", got)
	}
	if got := len(Comments()); got != 6 {
		t.Errorf("len(Comments()) = %d, want 6", got)
	}
	for _, tk := range Tickets() {
		if (tk.Status == domain.TicketStatusSolved) != (tk.SolvedAt != nil) {
			t.Errorf("%s: status %q with SolvedAt %v", tk.ID, tk.Status, tk.SolvedAt)
		}
	}
}
