package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/apperr"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/middleware"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/service"
)

type Handler struct {
	authService *service.AuthService
	taskService *service.TaskService
	logger      *logrus.Logger
}

func NewHandler(as *service.AuthService, ts *service.TaskService, logger *logrus.Logger) *Handler {
	return &Handler{
		authService: as,
		taskService: ts,
		logger:      logger,
	}
}

func (h *Handler) logEntry(r *http.Request, handler string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"component":  "http_handler",
		"handler":    handler,
		"request_id": middleware.GetRequestID(r.Context()),
	})
}

// principal returns the principal attached by the auth middleware.
// Handlers behind the middleware can rely on it being present; the
// false branch only fires on a wiring mistake.
func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Error: "not authorized to access this route"})
	}
	return p, ok
}

// Request bodies. There is deliberately no owner field on task
// payloads: the owner is always the authenticated principal, and any
// extra field a client sends is ignored by the decoder.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assigned_to"`
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "Register")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logEntry.WithError(err).Warn("invalid request body")
		writeError(w, logEntry, apperr.Validation("invalid request body"))
		return
	}

	token, user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		logEntry.WithError(err).Warn("registration rejected")
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("user_id", user.ID).Info("user registered")
	writeToken(w, http.StatusCreated, token, user)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "Login")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logEntry.WithError(err).Warn("invalid request body")
		writeError(w, logEntry, apperr.Validation("invalid request body"))
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// The failure reason stays out of the log fields too; the
		// response is identical for unknown email and bad password.
		logEntry.Warn("login rejected")
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("user_id", user.ID).Info("login successful")
	writeToken(w, http.StatusOK, token, user)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "Me")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Me(r.Context(), p)
	if err != nil {
		writeError(w, logEntry, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// ListUsers handles GET /api/auth/users. Admin only, enforced in the
// service.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "ListUsers")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	users, err := h.authService.Users(r.Context(), p)
	if err != nil {
		logEntry.WithError(err).Warn("user listing rejected")
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("count", len(users)).Debug("users listed")
	writeList(w, users, len(users))
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "CreateTask")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logEntry.WithError(err).Warn("invalid request body")
		writeError(w, logEntry, apperr.Validation("invalid request body"))
		return
	}

	task, err := h.taskService.Create(r.Context(), p, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		logEntry.WithError(err).Warn("task creation rejected")
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("task_id", task.ID).Info("task created")
	writeData(w, http.StatusCreated, task)
}

// ListTasks handles GET /api/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "ListTasks")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context(), p)
	if err != nil {
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("count", len(tasks)).Debug("tasks listed")
	writeList(w, tasks, len(tasks))
}

// SearchTasks handles GET /api/tasks/search.
func (h *Handler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "SearchTasks")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	tasks, err := h.taskService.Search(r.Context(), p, query)
	if err != nil {
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithFields(logrus.Fields{"query": query, "count": len(tasks)}).Debug("tasks searched")
	writeList(w, tasks, len(tasks))
}

// GetTask handles GET /api/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "GetTask")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	task, err := h.taskService.Get(r.Context(), p, id)
	if err != nil {
		logEntry.WithError(err).WithField("task_id", id).Warn("task read rejected")
		writeError(w, logEntry, err)
		return
	}
	writeData(w, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/{id}. An explicit empty
// assigned_to unassigns the task.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "UpdateTask")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logEntry.WithError(err).Warn("invalid request body")
		writeError(w, logEntry, apperr.Validation("invalid request body"))
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}
	if req.AssignedTo != nil && *req.AssignedTo == "" {
		in.ClearAssignee = true
	}

	task, err := h.taskService.Update(r.Context(), p, id, in)
	if err != nil {
		logEntry.WithError(err).WithField("task_id", id).Warn("task update rejected")
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("task_id", id).Info("task updated")
	writeData(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logEntry := h.logEntry(r, "DeleteTask")

	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.taskService.Delete(r.Context(), p, id); err != nil {
		logEntry.WithError(err).WithField("task_id", id).Warn("task deletion rejected")
		writeError(w, logEntry, err)
		return
	}

	logEntry.WithField("task_id", id).Info("task deleted")
	writeData(w, http.StatusOK, struct{}{})
}

// Health handles GET / with a liveness message.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Task Manager API running..."))
}
