package models

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles. There is no role-change
// endpoint: a role is fixed at registration.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role supplied by a client. The empty string
// defaults to RoleUser.
func ParseRole(s string) (Role, error) {
	switch s {
	case "":
		return RoleUser, nil
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// Status is the closed set of task statuses. Any status is reachable
// from any other; no transition rules apply.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ParseStatus validates a status supplied by a client. The empty
// string defaults to StatusTodo.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "":
		return StatusTodo, nil
	case string(StatusTodo):
		return StatusTodo, nil
	case string(StatusInProgress):
		return StatusInProgress, nil
	case string(StatusDone):
		return StatusDone, nil
	default:
		return "", fmt.Errorf("invalid status %q", s)
	}
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task has exactly one owner, set at creation and never altered.
// AssignedTo is nil when the task is unassigned; an empty-string
// assignee id is never stored.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	OwnerID     string    `json:"owner_id"`
	AssignedTo  *string   `json:"assigned_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Principal is the authenticated actor attached to a request after
// token verification. Role is read fresh from storage on every
// request, never from the token.
type Principal struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
