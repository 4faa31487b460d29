package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/apperr"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/service"
)

// envelope is the response shape shared by every endpoint. Auth
// endpoints additionally carry the token and public user at the top
// level; listings carry a count.
type envelope struct {
	Success bool                `json:"success"`
	Token   string              `json:"token,omitempty"`
	User    *service.PublicUser `json:"user,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: data})
}

func writeToken(w http.ResponseWriter, status int, token string, user service.PublicUser) {
	writeJSON(w, status, envelope{Success: true, Token: token, User: &user})
}

// writeError translates the error taxonomy to a status code exactly
// once. Unexpected errors are logged in full but reach the client as
// a generic message only.
func writeError(w http.ResponseWriter, logEntry *logrus.Entry, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
	case apperr.KindAuthentication:
		writeJSON(w, http.StatusUnauthorized, envelope{Error: err.Error()})
	case apperr.KindAuthorization:
		writeJSON(w, http.StatusForbidden, envelope{Error: err.Error()})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, envelope{Error: err.Error()})
	case apperr.KindConflict:
		writeJSON(w, http.StatusConflict, envelope{Error: err.Error()})
	default:
		logEntry.WithError(err).Error("unexpected failure")
		writeJSON(w, http.StatusInternalServerError, envelope{Error: "internal server error"})
	}
}
