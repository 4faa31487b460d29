package access

import (
	"testing"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
)

func taskOwnedBy(owner string, assignee *string) *models.Task {
	return &models.Task{
		ID:          "t_1",
		Title:       "Fix bug",
		Description: "details",
		Status:      models.StatusTodo,
		OwnerID:     owner,
		AssignedTo:  assignee,
	}
}

func strptr(s string) *string { return &s }

func TestEvaluator_RuleMatrix(t *testing.T) {
	owner := models.Principal{ID: "u_owner", Role: models.RoleUser}
	assignee := models.Principal{ID: "u_assignee", Role: models.RoleUser}
	stranger := models.Principal{ID: "u_stranger", Role: models.RoleUser}
	admin := models.Principal{ID: "u_admin", Role: models.RoleAdmin}

	task := taskOwnedBy("u_owner", strptr("u_assignee"))

	tests := []struct {
		name       string
		p          models.Principal
		read       bool
		update     bool
		deleteTask bool
	}{
		{"owner may read, update and delete", owner, true, true, true},
		{"assignee may read and update but not delete", assignee, true, true, false},
		{"unrelated user may do nothing", stranger, false, false, false},
		{"admin may do everything", admin, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRead(tt.p, task); got != tt.read {
				t.Errorf("CanRead = %v, want %v", got, tt.read)
			}
			if got := CanMutate(tt.p, task, OpUpdate); got != tt.update {
				t.Errorf("CanMutate(update) = %v, want %v", got, tt.update)
			}
			if got := CanMutate(tt.p, task, OpDelete); got != tt.deleteTask {
				t.Errorf("CanMutate(delete) = %v, want %v", got, tt.deleteTask)
			}
		})
	}
}

func TestEvaluator_AdminOverrideIgnoresOwnership(t *testing.T) {
	admin := models.Principal{ID: "u_admin", Role: models.RoleAdmin}

	// Admin is neither owner nor assignee of this task.
	task := taskOwnedBy("u_someone", strptr("u_else"))

	if !CanRead(admin, task) {
		t.Error("admin denied read on a task it does not own")
	}
	if !CanMutate(admin, task, OpUpdate) {
		t.Error("admin denied update on a task it does not own")
	}
	if !CanMutate(admin, task, OpDelete) {
		t.Error("admin denied delete on a task it does not own")
	}
}

func TestEvaluator_UnassignedTask(t *testing.T) {
	owner := models.Principal{ID: "u_owner", Role: models.RoleUser}
	stranger := models.Principal{ID: "u_stranger", Role: models.RoleUser}

	task := taskOwnedBy("u_owner", nil)

	if !CanRead(owner, task) {
		t.Error("owner denied read on unassigned task")
	}
	if CanRead(stranger, task) {
		t.Error("stranger permitted read on unassigned task")
	}
	if CanMutate(stranger, task, OpUpdate) {
		t.Error("stranger permitted update on unassigned task")
	}
}

// A principal with an empty id must never match an unassigned task or
// an empty owner; "unassigned" and "assigned to empty id" are distinct.
func TestEvaluator_EmptyPrincipalNeverMatches(t *testing.T) {
	empty := models.Principal{ID: "", Role: models.RoleUser}

	task := taskOwnedBy("", nil)

	if CanRead(empty, task) {
		t.Error("empty principal id matched empty owner id")
	}
	if CanMutate(empty, task, OpUpdate) || CanMutate(empty, task, OpDelete) {
		t.Error("empty principal id permitted mutation")
	}
}

func TestEvaluator_UnknownOperationDenied(t *testing.T) {
	owner := models.Principal{ID: "u_owner", Role: models.RoleUser}
	task := taskOwnedBy("u_owner", nil)

	if CanMutate(owner, task, Operation(99)) {
		t.Error("unknown operation permitted for owner")
	}
}
