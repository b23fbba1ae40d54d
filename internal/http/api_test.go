package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskmaster.com/taskmaster/internal/limiter"
	"taskmaster.com/taskmaster/internal/logging"
	repository "taskmaster.com/taskmaster/internal/repositories"
	"taskmaster.com/taskmaster/internal/services"
	model "taskmaster.com/taskmaster/pkg/models"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  []string        `json:"errors"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

type taskData struct {
	Task  model.Task   `json:"task"`
	Tasks []model.Task `json:"tasks"`
}

func newTestServer(t *testing.T, l limiter.Limiter) *httptest.Server {
	t.Helper()
	return newTestServerWithOptions(t, ServerOptions{Limiter: l})
}

func newTestServerWithOptions(t *testing.T, opts ServerOptions) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	log := logging.Discard()
	authService, err := services.NewAuthService(
		repository.NewUserRepository(db),
		services.NewTokenService("test-secret", 7*24*time.Hour),
		bcrypt.MinCost,
		log,
	)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	taskService := services.NewTaskService(repository.NewTaskRepository(db), log)

	opts.CORSAllowOrigins = []string{"*"}
	opts.Logger = log
	e := NewServer(NewHandler(authService, taskService), opts)

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		_ = sqlDB.Close()
	})
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, apiResponse, []byte) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var out apiResponse
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out, raw
}

func registerUser(t *testing.T, srv *httptest.Server, username, email string) string {
	t.Helper()
	status, resp, raw := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, status, raw)
	}
	var data authData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode auth data: %v", err)
	}
	return data.Token
}

func decodeTask(t *testing.T, resp apiResponse) model.Task {
	t.Helper()
	var data taskData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return data.Task
}

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	status, _, raw := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	if body["status"] != "healthy" {
		t.Errorf("unexpected status %v", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"].(string)); err != nil {
		t.Errorf("timestamp not RFC 3339: %v", body["timestamp"])
	}
}

func TestAPI_Index(t *testing.T) {
	srv := newTestServer(t, nil)

	status, _, raw := doJSON(t, srv, http.MethodGet, "/", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var body struct {
		Version   string                     `json:"version"`
		Endpoints map[string]json.RawMessage `json:"endpoints"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if body.Version == "" {
		t.Error("expected a version")
	}
	for _, group := range []string{"auth", "tasks", "health"} {
		if _, ok := body.Endpoints[group]; !ok {
			t.Errorf("index is missing %q", group)
		}
	}
}

func TestAPI_RegisterLoginProfile(t *testing.T) {
	srv := newTestServer(t, nil)

	status, resp, raw := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if status != http.StatusCreated || !resp.Success {
		t.Fatalf("register: %d %s", status, raw)
	}
	if strings.Contains(string(raw), "password") {
		t.Errorf("register response leaks password data: %s", raw)
	}

	status, resp, raw = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: %d %s", status, raw)
	}
	var login authData
	if err := json.Unmarshal(resp.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("login token missing: %s", raw)
	}

	status, resp, raw = doJSON(t, srv, http.MethodGet, "/api/auth/profile", login.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("profile: %d %s", status, raw)
	}
	var profile struct {
		User model.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(resp.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.User.Username != "alice" || profile.User.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", profile.User)
	}
}

func TestAPI_RegisterErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	registerUser(t, srv, "alice", "alice@example.com")

	status, resp, _ := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "al",
		"email":    "nope",
		"password": "1",
	})
	if status != http.StatusBadRequest || resp.Success || len(resp.Errors) != 3 {
		t.Errorf("validation: got %d %+v", status, resp)
	}

	status, resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if status != http.StatusConflict || resp.Error == "" {
		t.Errorf("duplicate: got %d %+v", status, resp)
	}

	status, resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": strings.Repeat("u", 300),
		"email":    "long@example.com",
		"password": "secret123",
	})
	if status != http.StatusBadRequest || len(resp.Errors) != 1 || resp.Errors[0] != "username must be at most 64 characters" {
		t.Errorf("oversized username: got %d %+v", status, resp)
	}

	status, resp, _ = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", `{"username":`)
	if status != http.StatusBadRequest || resp.Error != "invalid JSON payload" {
		t.Errorf("bad json: got %d %+v", status, resp)
	}
}

func TestAPI_LoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t, nil)
	registerUser(t, srv, "alice", "alice@example.com")

	s1, _, wrongPassword := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	s2, _, unknownEmail := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "secret123",
	})

	if s1 != http.StatusUnauthorized || s2 != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both, got %d and %d", s1, s2)
	}
	if !bytes.Equal(wrongPassword, unknownEmail) {
		t.Errorf("bodies differ:\n%s\n%s", wrongPassword, unknownEmail)
	}
}

func TestAPI_ProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, nil)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/x"},
		{http.MethodPut, "/api/tasks/x"},
		{http.MethodDelete, "/api/tasks/x"},
	}
	for _, r := range routes {
		status, resp, _ := doJSON(t, srv, r.method, r.path, "", nil)
		if status != http.StatusUnauthorized || resp.Success {
			t.Errorf("%s %s without token: got %d", r.method, r.path, status)
		}

		status, _, _ = doJSON(t, srv, r.method, r.path, "not-a-jwt", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: got %d", r.method, r.path, status)
		}
	}
}

func TestAPI_TaskLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerUser(t, srv, "alice", "alice@example.com")

	status, resp, raw := doJSON(t, srv, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":    "Write tests",
		"due_date": "2026-11-20",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %s", status, raw)
	}
	created := decodeTask(t, resp)
	if created.Priority != "medium" || created.Status != "pending" {
		t.Errorf("unexpected defaults %s/%s", created.Priority, created.Status)
	}

	status, resp, _ = doJSON(t, srv, http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	if status != http.StatusOK || decodeTask(t, resp).Title != "Write tests" {
		t.Errorf("get: %d %+v", status, resp)
	}

	status, resp, raw = doJSON(t, srv, http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{
		"status": "done",
	})
	if status != http.StatusOK {
		t.Fatalf("update: %d %s", status, raw)
	}
	updated := decodeTask(t, resp)
	if updated.Status != "done" || updated.Title != "Write tests" || updated.DueDate == nil {
		t.Errorf("unexpected update result %+v", updated)
	}

	status, resp, _ = doJSON(t, srv, http.MethodGet, "/api/tasks?status=done", token, nil)
	if status != http.StatusOK || resp.Count != 1 {
		t.Errorf("list done: %d count=%d", status, resp.Count)
	}
	status, resp, _ = doJSON(t, srv, http.MethodGet, "/api/tasks?status=pending", token, nil)
	if status != http.StatusOK || resp.Count != 0 {
		t.Errorf("list pending: %d count=%d", status, resp.Count)
	}

	status, resp, _ = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	if status != http.StatusOK || resp.Message == "" {
		t.Errorf("delete: %d %+v", status, resp)
	}

	status, resp, _ = doJSON(t, srv, http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	if status != http.StatusNotFound || resp.Error != "task not found" {
		t.Errorf("get after delete: %d %+v", status, resp)
	}
}

func TestAPI_TaskValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerUser(t, srv, "alice", "alice@example.com")

	status, resp, _ := doJSON(t, srv, http.MethodPost, "/api/tasks", token, map[string]any{"title": ""})
	if status != http.StatusBadRequest || len(resp.Errors) != 1 {
		t.Errorf("empty title: %d %+v", status, resp)
	}

	status, resp, _ = doJSON(t, srv, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":    "x",
		"due_date": "someday",
	})
	if status != http.StatusBadRequest || len(resp.Errors) != 1 {
		t.Errorf("bad due date: %d %+v", status, resp)
	}

	status, _, _ = doJSON(t, srv, http.MethodGet, "/api/tasks?priority=urgent", token, nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad filter: %d", status)
	}
}

func TestAPI_OwnershipIsolation(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := registerUser(t, srv, "alice", "alice@example.com")
	bob := registerUser(t, srv, "bob", "bob@example.com")

	_, resp, _ := doJSON(t, srv, http.MethodPost, "/api/tasks", alice, map[string]any{"title": "alice only"})
	task := decodeTask(t, resp)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = map[string]any{"title": "stolen"}
		}
		status, _, _ := doJSON(t, srv, method, "/api/tasks/"+task.ID, bob, body)
		if status != http.StatusNotFound {
			t.Errorf("%s by other user: expected 404, got %d", method, status)
		}
	}

	_, resp, _ = doJSON(t, srv, http.MethodGet, "/api/tasks", bob, nil)
	if resp.Count != 0 {
		t.Errorf("bob should see no tasks, got %d", resp.Count)
	}

	_, resp, _ = doJSON(t, srv, http.MethodGet, "/api/tasks/"+task.ID, alice, nil)
	if decodeTask(t, resp).Title != "alice only" {
		t.Errorf("alice's task was modified")
	}
}

func TestAPI_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	status, resp, _ := doJSON(t, srv, http.MethodGet, "/api/nope", "", nil)
	if status != http.StatusNotFound || resp.Error != "route not found: /api/nope" {
		t.Errorf("got %d %+v", status, resp)
	}
}

func TestAPI_RateLimit(t *testing.T) {
	srv := newTestServer(t, limiter.NewMemoryLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		if status, _, _ := doJSON(t, srv, http.MethodGet, "/api/health", "", nil); status != http.StatusOK {
			t.Fatalf("request %d: got %d", i+1, status)
		}
	}

	status, resp, _ := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusTooManyRequests || resp.Error != "rate limit exceeded" {
		t.Errorf("expected 429, got %d %+v", status, resp)
	}
}

func healthWithForwardedFor(t *testing.T, srv *httptest.Server, forwardedFor string) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Forwarded-For", forwardedFor)
	req.Header.Set("X-Real-IP", forwardedFor)

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestAPI_RateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	srv := newTestServer(t, limiter.NewMemoryLimiter(2, time.Minute))

	allowed := 0
	for i := 0; i < 10; i++ {
		if healthWithForwardedFor(t, srv, fmt.Sprintf("10.0.0.%d", i)) == http.StatusOK {
			allowed++
		}
	}

	if allowed != 2 {
		t.Errorf("expected 2 requests through for one client, got %d", allowed)
	}
}

func TestAPI_RateLimitHonorsTrustedProxy(t *testing.T) {
	_, loopback, _ := net.ParseCIDR("127.0.0.0/8")
	srv := newTestServerWithOptions(t, ServerOptions{
		Limiter:        limiter.NewMemoryLimiter(2, time.Minute),
		TrustedProxies: []*net.IPNet{loopback},
	})

	for i := 0; i < 5; i++ {
		if status := healthWithForwardedFor(t, srv, fmt.Sprintf("203.0.113.%d", i)); status != http.StatusOK {
			t.Fatalf("client %d behind the proxy: got %d", i, status)
		}
	}

	for i := 0; i < 2; i++ {
		healthWithForwardedFor(t, srv, "198.51.100.1")
	}
	if status := healthWithForwardedFor(t, srv, "198.51.100.1"); status != http.StatusTooManyRequests {
		t.Errorf("expected the forwarded client to be limited, got %d", status)
	}
}
