package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/fixtures"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

var start = time.Date(2023, 6, 12, 9, 0, 0, 0, time.UTC)

func directory(t *testing.T) repository.UserRepository {
	t.Helper()
	records, err := HashSeed(fixtures.Users(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashSeed: %v", err)
	}
	dir, err := repository.NewUserDirectory(records)
	if err != nil {
		t.Fatalf("NewUserDirectory: %v", err)
	}
	return dir
}

func TestHashSeedVerifies(t *testing.T) {
	dir := directory(t)
	if u := dir.Authenticate(context.Background(), "jane", "password123"); u == nil || u.ID != "user2" {
		t.Fatalf("Authenticate(jane) = %+v", u)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	clk := clock.Fake(start)
	tm := NewTokenManager("secret", 30*time.Minute, clk)
	user := domain.User{ID: "user3", Role: domain.RoleAdmin}

	token, expiresAt, err := tm.GenerateToken(user, "sess-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if want := start.Add(30 * time.Minute); !expiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, want)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.SubjectID != "user3" || claims.Role != domain.RoleAdmin || claims.ID != "sess-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	clk := clock.Fake(start)
	tm := NewTokenManager("secret", time.Hour, clk)
	token, _, err := tm.GenerateToken(domain.User{ID: "user1", Role: domain.RoleOperationStaff}, "sess-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewTokenManager("another-secret", time.Hour, clk)
	if _, err := other.ParseToken(token); err == nil {
		t.Error("ParseToken accepted a token signed with another secret")
	}
	if _, err := tm.ParseToken("not-a-token"); err == nil {
		t.Error("ParseToken accepted garbage")
	}

	clk.Advance(2 * time.Hour)
	if _, err := tm.ParseToken(token); err == nil {
		t.Error("ParseToken accepted an expired token")
	}
}

func TestMemorySessionExpiry(t *testing.T) {
	clk := clock.Fake(start)
	store := NewMemorySessionStore(clk)
	ctx := context.Background()

	session := domain.Session{ID: "s1", User: domain.User{ID: "user1"}, IssuedAt: start, ExpiresAt: start.Add(time.Hour)}
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil || got.User.ID != "user1" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	clk.Advance(time.Hour)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after expiry err = %v, want ErrSessionNotFound", err)
	}

	_ = store.Put(ctx, domain.Session{ID: "s2", ExpiresAt: clk.Now().Add(time.Hour)})
	_ = store.Delete(ctx, "s2")
	if _, err := store.Get(ctx, "s2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after Delete err = %v, want ErrSessionNotFound", err)
	}
}

type harness struct {
	app      *fiber.App
	tokens   *TokenManager
	sessions *MemorySessionStore
	clock    *clock.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := clock.Fake(start)
	h := &harness{
		tokens:   NewTokenManager("secret", time.Hour, clk),
		sessions: NewMemorySessionStore(clk),
		clock:    clk,
	}
	h.app = fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(h.tokens, h.sessions, directory(t))
	h.app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.User.ID)
	})
	h.app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return h
}

func (h *harness) login(t *testing.T, user domain.User, sessionID string) string {
	t.Helper()
	token, expiresAt, err := h.tokens.GenerateToken(user, sessionID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := h.sessions.Put(context.Background(), domain.Session{ID: sessionID, User: user, IssuedAt: start, ExpiresAt: expiresAt}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return token
}

func (h *harness) status(t *testing.T, path, authorization string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := h.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestMiddleware(t *testing.T) {
	h := newHarness(t)
	john := domain.User{ID: "user1", Role: domain.RoleOperationStaff}
	admin := domain.User{ID: "user3", Role: domain.RoleAdmin}
	johnToken := h.login(t, john, "s-john")
	adminToken := h.login(t, admin, "s-admin")
	ghostToken := h.login(t, domain.User{ID: "user99", Role: domain.RoleAdmin}, "s-ghost")

	cases := []struct {
		name          string
		path          string
		authorization string
		want          int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic " + johnToken, http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid", "/me", "Bearer " + johnToken, http.StatusOK},
		{"unknown user", "/me", "Bearer " + ghostToken, http.StatusUnauthorized},
		{"role denied", "/admin", "Bearer " + johnToken, http.StatusForbidden},
		{"role allowed", "/admin", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.status(t, tc.path, tc.authorization); got != tc.want {
				t.Errorf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMiddlewareRejectsLoggedOutSession(t *testing.T) {
	h := newHarness(t)
	token := h.login(t, domain.User{ID: "user1", Role: domain.RoleOperationStaff}, "s-1")
	_ = h.sessions.Delete(context.Background(), "s-1")

	if got := h.status(t, "/me", "Bearer "+token); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 after logout", got)
	}
}
