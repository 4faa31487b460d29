package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/middleware"
)

// NewRouter wires every route. Task and user routes sit behind the
// bearer-token middleware; register and login do not.
func NewRouter(h *Handler, resolver middleware.PrincipalResolver, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()
	protect := middleware.AuthMiddleware(resolver, log)

	mux.HandleFunc("GET /{$}", h.Health)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)

	mux.Handle("GET /api/auth/me", protect(http.HandlerFunc(h.Me)))
	mux.Handle("GET /api/auth/users", protect(http.HandlerFunc(h.ListUsers)))

	mux.Handle("GET /api/tasks", protect(http.HandlerFunc(h.ListTasks)))
	mux.Handle("POST /api/tasks", protect(http.HandlerFunc(h.CreateTask)))
	mux.Handle("GET /api/tasks/search", protect(http.HandlerFunc(h.SearchTasks)))
	mux.Handle("GET /api/tasks/{id}", protect(http.HandlerFunc(h.GetTask)))
	mux.Handle("PUT /api/tasks/{id}", protect(http.HandlerFunc(h.UpdateTask)))
	mux.Handle("DELETE /api/tasks/{id}", protect(http.HandlerFunc(h.DeleteTask)))

	mux.Handle("GET /metrics", middleware.MetricsHandler())

	return mux
}
