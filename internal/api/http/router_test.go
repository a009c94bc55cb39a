package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/clock"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/fixtures"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

var now = time.Date(2023, 6, 12, 8, 0, 0, 0, time.UTC)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	clk := clock.Fake(now)
	store := persistence.NewMemoryStore()

	records, err := auth.HashSeed(fixtures.Users(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashSeed: %v", err)
	}
	users, err := repository.NewUserDirectory(records)
	if err != nil {
		t.Fatalf("NewUserDirectory: %v", err)
	}
	ticketRepo := repository.NewTicketRepository(store, clk, logger)
	commentRepo := repository.NewCommentRepository(store, clk, logger)
	if err := ticketRepo.Load(ctx, fixtures.Tickets()); err != nil {
		t.Fatalf("load tickets: %v", err)
	}
	if err := commentRepo.Load(ctx, fixtures.Comments()); err != nil {
		t.Fatalf("load comments: %v", err)
	}

	bus := events.NewInMemoryDispatcher()
	tickets := service.NewTicketService(service.TicketDependencies{TicketRepo: ticketRepo, UserRepo: users, Clock: clk, Dispatcher: bus, Logger: logger})
	comments := service.NewCommentService(service.CommentDependencies{CommentRepo: commentRepo, UserRepo: users, Tickets: tickets, Clock: clk, Dispatcher: bus, Logger: logger})
	sessions := auth.NewMemorySessionStore(clk)
	tokens := auth.NewTokenManager("test-secret", time.Hour, clk)
	authSvc := service.NewAuthService(service.AuthDependencies{UserRepo: users, Sessions: sessions, Tokens: tokens, Clock: clk, Logger: logger})
	metrics := observability.NewMetrics()

	return httptransport.NewApp("helpdesk-test", logger, metrics, time.Second, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk", "test", map[string]handlers.Pinger{"store": store, "sessions": sessions}, metrics),
		Users:          handlers.NewUsersHandler(authSvc, service.NewUserService(users)),
		Tickets:        handlers.NewTicketsHandler(tickets),
		Comments:       handlers.NewCommentsHandler(comments),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions, users),
	})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"password123"}`)
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d %+v", username, status, env.Error)
	}
	var data struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Auth.Token == "" {
		t.Fatalf("login %s: token missing (%v)", username, err)
	}
	return data.Auth.Token
}

type ticketJSON struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Department  string  `json:"department"`
	CreatorID   string  `json:"creator_id"`
	CreatorName string  `json:"creator_name"`
	SolvedAt    *string `json:"solved_at"`
}

func decodeTickets(t *testing.T, env envelope) []ticketJSON {
	t.Helper()
	var out []ticketJSON
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode tickets: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	if status, _ := do(t, app, http.MethodGet, "/health/live", "", ""); status != http.StatusOK {
		t.Errorf("live = %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/health/ready", "", ""); status != http.StatusOK {
		t.Errorf("ready = %d", status)
	}
}

func TestLoginFlow(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodPost, "/auth/login", "", `{"username":"jane","password":"nope"}`)
	if status != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("bad login = %d %+v", status, env.Error)
	}
	status, _ = do(t, app, http.MethodPost, "/auth/login", "", `{"username":""}`)
	if status != http.StatusBadRequest {
		t.Fatalf("empty login = %d, want 400", status)
	}

	token := login(t, app, "jane")
	status, env = do(t, app, http.MethodGet, "/auth/me", token, "")
	if status != http.StatusOK {
		t.Fatalf("me = %d", status)
	}
	var me struct {
		User struct {
			ID         string `json:"id"`
			Department string `json:"department"`
		} `json:"user"`
	}
	_ = json.Unmarshal(env.Data, &me)
	if me.User.ID != "user2" || me.User.Department != "Finance" {
		t.Errorf("me = %+v", me)
	}

	if status, _ := do(t, app, http.MethodPost, "/auth/logout", token, ""); status != http.StatusNoContent {
		t.Fatalf("logout = %d", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/auth/me", token, ""); status != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d, want 401", status)
	}
}

func TestTicketsRequireAuth(t *testing.T) {
	app := newApp(t)
	status, env := do(t, app, http.MethodGet, "/tickets", "", "")
	if status != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
}

func TestListTicketsScoped(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodGet, "/tickets", login(t, app, "john"), "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	got := decodeTickets(t, env)
	if len(got) != 3 || got[0].ID != "ticket1" || got[0].CreatorName != "John Operation" {
		t.Fatalf("john tickets = %+v", got)
	}

	admin := login(t, app, "admin")
	status, env = do(t, app, http.MethodGet, "/tickets?department=IT&status=Open", admin, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	got = decodeTickets(t, env)
	if len(got) != 1 || got[0].ID != "ticket4" {
		t.Fatalf("filtered = %+v", got)
	}

	status, env = do(t, app, http.MethodGet, "/tickets?status=Closed", admin, "")
	if status != http.StatusBadRequest || env.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("bad status filter = %d %+v", status, env.Error)
	}
}

func TestGetTicket(t *testing.T) {
	app := newApp(t)
	john := login(t, app, "john")

	status, env := do(t, app, http.MethodGet, "/tickets/ticket1", john, "")
	if status != http.StatusOK {
		t.Fatalf("own ticket = %d", status)
	}
	var tk ticketJSON
	_ = json.Unmarshal(env.Data, &tk)
	if tk.ID != "ticket1" || tk.SolvedAt != nil {
		t.Errorf("ticket = %+v", tk)
	}

	if status, env := do(t, app, http.MethodGet, "/tickets/ticket4", john, ""); status != http.StatusForbidden || env.Error.Code != "FORBIDDEN" {
		t.Errorf("foreign ticket = %d %+v", status, env.Error)
	}
	if status, env := do(t, app, http.MethodGet, "/tickets/nope", john, ""); status != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Errorf("missing ticket = %d %+v", status, env.Error)
	}
}

func TestCreateTicket(t *testing.T) {
	app := newApp(t)
	john := login(t, app, "john")

	status, env := do(t, app, http.MethodPost, "/tickets", john, `{"subject":"Hi","details":"short","department":""}`)
	if status != http.StatusBadRequest || env.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("invalid create = %d %+v", status, env.Error)
	}
	for _, field := range []string{"subject", "details", "department"} {
		if _, ok := env.Error.Details[field]; !ok {
			t.Errorf("details missing %q: %+v", field, env.Error.Details)
		}
	}

	status, env = do(t, app, http.MethodPost, "/tickets", john,
		`{"subject":"Monitor flickers","details":"The second monitor flickers every few minutes","department":"IT"}`)
	if status != http.StatusCreated {
		t.Fatalf("create = %d %+v", status, env.Error)
	}
	var tk ticketJSON
	_ = json.Unmarshal(env.Data, &tk)
	if tk.ID == "" || tk.Status != "Open" || tk.CreatorID != "user1" || tk.CreatorName != "John Operation" {
		t.Fatalf("created = %+v", tk)
	}

	status, env = do(t, app, http.MethodGet, "/tickets", john, "")
	if got := decodeTickets(t, env); status != http.StatusOK || got[0].ID != tk.ID {
		t.Errorf("newest ticket = %+v", got)
	}

	jane := login(t, app, "jane")
	status, _ = do(t, app, http.MethodPost, "/tickets", jane,
		`{"subject":"From HQ","details":"HQ cannot raise tickets here","department":"Finance"}`)
	if status != http.StatusForbidden {
		t.Errorf("hq create = %d, want 403", status)
	}
}

func TestUpdateStatus(t *testing.T) {
	app := newApp(t)
	jane := login(t, app, "jane")

	status, env := do(t, app, http.MethodPatch, "/tickets/ticket1/status", jane, `{"status":"Solved"}`)
	if status != http.StatusOK {
		t.Fatalf("solve = %d %+v", status, env.Error)
	}
	var tk ticketJSON
	_ = json.Unmarshal(env.Data, &tk)
	if tk.Status != "Solved" || tk.SolvedAt == nil {
		t.Fatalf("solved = %+v", tk)
	}

	if status, _ := do(t, app, http.MethodPatch, "/tickets/ticket2/status", jane, `{"status":"Solved"}`); status != http.StatusForbidden {
		t.Errorf("other department = %d, want 403", status)
	}
	if status, _ := do(t, app, http.MethodPatch, "/tickets/ticket1/status", jane, `{"status":"Archived"}`); status != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", status)
	}
	if status, _ := do(t, app, http.MethodPatch, "/tickets/ticket1/status", login(t, app, "john"), `{"status":"Open"}`); status != http.StatusForbidden {
		t.Errorf("staff update = %d, want 403", status)
	}
}

func TestComments(t *testing.T) {
	app := newApp(t)
	john := login(t, app, "john")

	status, env := do(t, app, http.MethodGet, "/tickets/ticket1/comments", john, "")
	if status != http.StatusOK {
		t.Fatalf("list = %d", status)
	}
	var comments []struct {
		ID       string `json:"id"`
		UserName string `json:"user_name"`
		UserRole string `json:"user_role"`
		Message  string `json:"message"`
	}
	_ = json.Unmarshal(env.Data, &comments)
	if len(comments) != 2 || comments[0].UserName != "Jane HQ" || comments[0].UserRole != "HQ" {
		t.Fatalf("comments = %+v", comments)
	}

	if status, _ := do(t, app, http.MethodPost, "/tickets/ticket1/comments", john, `{"message":"   "}`); status != http.StatusBadRequest {
		t.Errorf("blank comment = %d, want 400", status)
	}
	if status, _ := do(t, app, http.MethodPost, "/tickets/ticket4/comments", john, `{"message":"hi"}`); status != http.StatusForbidden {
		t.Errorf("foreign comment = %d, want 403", status)
	}

	status, _ = do(t, app, http.MethodPost, "/tickets/ticket1/comments", john, `{"message":"Any update?"}`)
	if status != http.StatusCreated {
		t.Fatalf("add = %d", status)
	}
	_, env = do(t, app, http.MethodGet, "/tickets/ticket1/comments", john, "")
	_ = json.Unmarshal(env.Data, &comments)
	if len(comments) != 3 || comments[2].Message != "Any update?" {
		t.Fatalf("after add = %+v", comments)
	}
}

func TestStatsAdminOnly(t *testing.T) {
	app := newApp(t)

	if status, _ := do(t, app, http.MethodGet, "/stats", login(t, app, "jane"), ""); status != http.StatusForbidden {
		t.Errorf("hq stats = %d, want 403", status)
	}

	status, env := do(t, app, http.MethodGet, "/stats", login(t, app, "admin"), "")
	if status != http.StatusOK {
		t.Fatalf("admin stats = %d", status)
	}
	var stats struct {
		TotalTickets    int `json:"total_tickets"`
		DepartmentStats []struct {
			Department string `json:"department"`
			Count      int    `json:"count"`
		} `json:"department_stats"`
		AgeStats struct {
			LessThan24h int `json:"less_than_24h"`
			LessThan7d  int `json:"less_than_7d"`
		} `json:"age_stats"`
	}
	_ = json.Unmarshal(env.Data, &stats)
	if stats.TotalTickets != 5 || len(stats.DepartmentStats) != 3 || stats.DepartmentStats[0].Department != "Finance" {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AgeStats.LessThan24h != 1 || stats.AgeStats.LessThan7d != 2 {
		t.Errorf("age stats = %+v", stats.AgeStats)
	}
}

func TestUsersAndMetrics(t *testing.T) {
	app := newApp(t)
	token := login(t, app, "john")

	status, env := do(t, app, http.MethodGet, "/users", token, "")
	if status != http.StatusOK {
		t.Fatalf("users = %d", status)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatalf("user listing leaks credentials: %s", env.Data)
	}
	if status, _ := do(t, app, http.MethodGet, "/users/user99", token, ""); status != http.StatusNotFound {
		t.Errorf("unknown user = %d, want 404", status)
	}

	status, env = do(t, app, http.MethodGet, "/metrics", "", "")
	if status != http.StatusOK {
		t.Fatalf("metrics = %d", status)
	}
	var snap observability.Snapshot
	_ = json.Unmarshal(env.Data, &snap)
	if len(snap.Requests) == 0 || len(snap.Errors) == 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}
