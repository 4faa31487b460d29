package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/auth"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/repository"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/service"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    map[string]any  `json:"user"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	users := repository.NewMemoryUserRepository()
	tasks := repository.NewMemoryTaskRepository()

	authService := service.NewAuthService(users, tokens, 4)
	taskService := service.NewTaskService(tasks, users)
	handler := NewHandler(authService, taskService, log)
	return NewRouter(handler, authService, log)
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, resp
}

func registerUser(t *testing.T, router http.Handler, name, email, role string) string {
	t.Helper()
	status, resp := do(t, router, "POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "s3cret123", "role": role,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d, error %q", email, status, resp.Error)
	}
	if resp.Token == "" {
		t.Fatalf("register %s: no token in response", email)
	}
	return resp.Token
}

func TestRegisterAndLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	status, resp := do(t, router, "POST", "/api/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "s3cret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", status)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("register response = %+v, want success with token", resp)
	}
	if resp.User["role"] != "user" {
		t.Errorf("registered role = %v, want user", resp.User["role"])
	}
	if _, leaked := resp.User["password"]; leaked {
		t.Error("password field present in response")
	}

	status, resp = do(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "s3cret123",
	})
	if status != http.StatusOK || resp.Token == "" {
		t.Fatalf("login status = %d resp = %+v, want 200 with token", status, resp)
	}

	// The issued token works on a protected route.
	status, resp = do(t, router, "GET", "/api/auth/me", resp.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d, want 200", status)
	}
	var me map[string]any
	if err := json.Unmarshal(resp.Data, &me); err != nil {
		t.Fatalf("decode me data: %v", err)
	}
	if me["email"] != "alice@example.com" {
		t.Errorf("me email = %v, want alice@example.com", me["email"])
	}
}

func TestRegister_DuplicateEmailIsConflict(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com", "")

	status, resp := do(t, router, "POST", "/api/auth/register", "", map[string]string{
		"name": "Other", "email": "alice@example.com", "password": "different1",
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate register status = %d (%q), want 409", status, resp.Error)
	}
}

func TestLogin_FailureResponsesIdentical(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com", "")

	statusA, respA := do(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	statusB, respB := do(t, router, "POST", "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "whatever12",
	})

	if statusA != http.StatusUnauthorized || statusB != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401 for both", statusA, statusB)
	}
	if respA.Error != respB.Error {
		t.Errorf("failure messages differ: %q vs %q", respA.Error, respB.Error)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct{ method, path string }{
		{"GET", "/api/auth/me"},
		{"GET", "/api/auth/users"},
		{"GET", "/api/tasks"},
		{"POST", "/api/tasks"},
		{"PUT", "/api/tasks/t_1"},
		{"DELETE", "/api/tasks/t_1"},
	}
	for _, p := range paths {
		status, _ := do(t, router, p.method, p.path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", p.method, p.path, status)
		}
		status, _ = do(t, router, p.method, p.path, "not-a-real-token", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: status %d, want 401", p.method, p.path, status)
		}
	}
}

func TestCreateTask_IgnoresOwnerInPayload(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")

	status, meResp := do(t, router, "GET", "/api/auth/me", alice, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d", status)
	}
	var me map[string]any
	if err := json.Unmarshal(meResp.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}

	// The payload tries to hand ownership to someone else.
	status, resp := do(t, router, "POST", "/api/tasks", alice, map[string]any{
		"title":       "Fix bug",
		"description": "details",
		"owner_id":    "u_someone_else",
		"owner":       "u_someone_else",
		"user":        "u_someone_else",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d (%q), want 201", status, resp.Error)
	}
	var task map[string]any
	if err := json.Unmarshal(resp.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task["owner_id"] != me["id"] {
		t.Errorf("owner = %v, want the authenticated principal %v", task["owner_id"], me["id"])
	}
	if task["status"] != "todo" {
		t.Errorf("default status = %v, want todo", task["status"])
	}
}

func TestTaskLifecycleAcrossPrincipals(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")
	bob := registerUser(t, router, "Bob", "bob@example.com", "")
	root := registerUser(t, router, "Root", "root@example.com", "admin")

	status, resp := do(t, router, "POST", "/api/tasks", alice, map[string]string{
		"title": "Fix bug", "description": "details",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d (%q)", status, resp.Error)
	}
	var task map[string]any
	if err := json.Unmarshal(resp.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	taskID := task["id"].(string)

	// Bob is unrelated: cannot see or touch it.
	status, _ = do(t, router, "GET", "/api/tasks", bob, nil)
	if status != http.StatusOK {
		t.Fatalf("bob list status = %d", status)
	}
	status, _ = do(t, router, "PUT", "/api/tasks/"+taskID, bob, map[string]string{"status": "done"})
	if status != http.StatusForbidden {
		t.Errorf("unrelated update status = %d, want 403", status)
	}
	status, _ = do(t, router, "DELETE", "/api/tasks/"+taskID, bob, nil)
	if status != http.StatusForbidden {
		t.Errorf("unrelated delete status = %d, want 403", status)
	}

	// Admin may update regardless of ownership.
	status, resp = do(t, router, "PUT", "/api/tasks/"+taskID, root, map[string]string{"status": "done"})
	if status != http.StatusOK {
		t.Fatalf("admin update status = %d (%q), want 200", status, resp.Error)
	}

	// Alice sees the admin's change.
	status, resp = do(t, router, "GET", "/api/tasks/"+taskID, alice, nil)
	if status != http.StatusOK {
		t.Fatalf("owner get status = %d", status)
	}
	if err := json.Unmarshal(resp.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task["status"] != "done" {
		t.Errorf("status after admin update = %v, want done", task["status"])
	}

	// Owner deletes; a second delete reports not-found.
	status, _ = do(t, router, "DELETE", "/api/tasks/"+taskID, alice, nil)
	if status != http.StatusOK {
		t.Errorf("owner delete status = %d, want 200", status)
	}
	status, _ = do(t, router, "DELETE", "/api/tasks/"+taskID, alice, nil)
	if status != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", status)
	}
}

func TestListTasks_VisibilityAndCount(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")
	bob := registerUser(t, router, "Bob", "bob@example.com", "")
	root := registerUser(t, router, "Root", "root@example.com", "admin")

	for _, title := range []string{"one", "two"} {
		if status, resp := do(t, router, "POST", "/api/tasks", alice, map[string]string{
			"title": title, "description": "details",
		}); status != http.StatusCreated {
			t.Fatalf("create %s: %d (%q)", title, status, resp.Error)
		}
	}
	if status, _ := do(t, router, "POST", "/api/tasks", bob, map[string]string{
		"title": "three", "description": "details",
	}); status != http.StatusCreated {
		t.Fatalf("bob create failed: %d", status)
	}

	status, resp := do(t, router, "GET", "/api/tasks", alice, nil)
	if status != http.StatusOK || resp.Count == nil || *resp.Count != 2 {
		t.Errorf("alice list: status %d count %v, want 200 with count 2", status, resp.Count)
	}
	status, resp = do(t, router, "GET", "/api/tasks", root, nil)
	if status != http.StatusOK || resp.Count == nil || *resp.Count != 3 {
		t.Errorf("admin list: status %d count %v, want 200 with count 3", status, resp.Count)
	}
}

func TestListUsers_AdminOnly(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")
	root := registerUser(t, router, "Root", "root@example.com", "admin")

	status, _ := do(t, router, "GET", "/api/auth/users", alice, nil)
	if status != http.StatusForbidden {
		t.Errorf("non-admin users listing status = %d, want 403", status)
	}

	status, resp := do(t, router, "GET", "/api/auth/users", root, nil)
	if status != http.StatusOK {
		t.Fatalf("admin users listing status = %d", status)
	}
	if resp.Count == nil || *resp.Count != 2 {
		t.Errorf("users count = %v, want 2", resp.Count)
	}
	var users []map[string]any
	if err := json.Unmarshal(resp.Data, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	for _, u := range users {
		if _, leaked := u["password"]; leaked {
			t.Error("password field present in user listing")
		}
	}
}

func TestCreateTask_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"description": "details"}},
		{"missing description", map[string]any{"title": "Fix bug"}},
		{"bad status", map[string]any{"title": "Fix bug", "description": "d", "status": "blocked"}},
		{"unknown assignee", map[string]any{"title": "Fix bug", "description": "d", "assigned_to": "u_ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := do(t, router, "POST", "/api/tasks", alice, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d (%q), want 400", status, resp.Error)
			}
			if resp.Success {
				t.Error("success = true on a validation failure")
			}
		})
	}
}

func TestUpdateMissingTaskIsNotFound(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")

	status, _ := do(t, router, "PUT", "/api/tasks/t_missing", alice, map[string]string{"title": "x"})
	if status != http.StatusNotFound {
		t.Errorf("update missing task status = %d, want 404", status)
	}
}

func TestSearchTasks(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "Alice", "alice@example.com", "")

	if status, _ := do(t, router, "POST", "/api/tasks", alice, map[string]string{
		"title": "Deploy service", "description": "details",
	}); status != http.StatusCreated {
		t.Fatalf("create failed: %d", status)
	}

	status, resp := do(t, router, "GET", "/api/tasks/search?q=deploy", alice, nil)
	if status != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Errorf("search: status %d count %v, want 200 with count 1", status, resp.Count)
	}

	status, _ = do(t, router, "GET", "/api/tasks/search", alice, nil)
	if status != http.StatusBadRequest {
		t.Errorf("search without q: status %d, want 400", status)
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/unknown", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
}
