// Package access decides whether a principal may act on a task. The
// functions here are pure: no I/O, no logging, and they never fail.
// A deny is a value, not an error. Callers are responsible for
// checking that the task exists before asking; an absent task is a
// not-found condition, never an authorization one.
package access

import "github.com/Heritiana-Nofy/task-manager-mern/internal/models"

// Operation is a mutation the evaluator can be asked about.
type Operation int

const (
	OpUpdate Operation = iota
	OpDelete
)

// CanRead reports whether the principal may see the task: admins see
// everything, everyone else only tasks they own or are assigned to.
// Listing visibility must agree with this check per record.
func CanRead(p models.Principal, t *models.Task) bool {
	if p.IsAdmin() {
		return true
	}
	return isOwner(p, t) || isAssignee(p, t)
}

// CanMutate reports whether the principal may perform op on the task.
// Admins may do anything. Owners may update and delete. Assignees may
// update but not delete; that asymmetry is deliberate.
func CanMutate(p models.Principal, t *models.Task, op Operation) bool {
	if p.IsAdmin() {
		return true
	}
	switch op {
	case OpUpdate:
		return isOwner(p, t) || isAssignee(p, t)
	case OpDelete:
		return isOwner(p, t)
	default:
		return false
	}
}

func isOwner(p models.Principal, t *models.Task) bool {
	return p.ID != "" && p.ID == t.OwnerID
}

func isAssignee(p models.Principal, t *models.Task) bool {
	return t.AssignedTo != nil && p.ID != "" && p.ID == *t.AssignedTo
}
