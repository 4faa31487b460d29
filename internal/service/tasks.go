package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/access"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/apperr"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/repository"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

// UserRef is the display-friendly projection of an owner or assignee
// produced by the read-side join.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskView is a task shaped for responses: raw references plus the
// resolved owner/assignee. Resolved refs are nil when the referenced
// user no longer exists.
type TaskView struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      models.Status `json:"status"`
	OwnerID     string        `json:"owner_id"`
	Owner       *UserRef      `json:"owner,omitempty"`
	AssignedTo  *string       `json:"assigned_to,omitempty"`
	Assignee    *UserRef      `json:"assignee,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CreateTaskInput carries client-supplied fields for task creation.
// There is deliberately no owner field: the owner is always the
// authenticated principal.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	AssignedTo  *string
}

// UpdateTaskInput is a patch: nil fields are left untouched.
// ClearAssignee unassigns the task; it wins over AssignedTo.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *string
	AssignedTo    *string
	ClearAssignee bool
}

type TaskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
	}
}

// Create persists a new task owned by the principal. Any owner value
// a client smuggles into the payload never reaches this function.
func (s *TaskService) Create(ctx context.Context, p models.Principal, in CreateTaskInput) (*TaskView, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(in.Status)
	if err != nil {
		return nil, apperr.Validation("status must be todo, in-progress or done")
	}
	assignee, err := s.normalizeAssignee(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          "t_" + uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		OwnerID:     p.ID,
		AssignedTo:  assignee,
		CreatedAt:   time.Now(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.toView(ctx, task), nil
}

// List returns the tasks visible to the principal: everything for an
// admin, otherwise owned-or-assigned only. The result agrees with
// access.CanRead on every record.
func (s *TaskService) List(ctx context.Context, p models.Principal) ([]*TaskView, error) {
	var tasks []*models.Task
	var err error
	if p.IsAdmin() {
		tasks, err = s.tasks.ListAll(ctx)
	} else {
		tasks, err = s.tasks.ListVisibleTo(ctx, p.ID)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.toViews(ctx, tasks), nil
}

// Search filters the principal's visible set by title substring.
func (s *TaskService) Search(ctx context.Context, p models.Principal, query string) ([]*TaskView, error) {
	if query == "" {
		return nil, apperr.Validation("search query parameter 'q' is required")
	}
	var tasks []*models.Task
	var err error
	if p.IsAdmin() {
		tasks, err = s.tasks.SearchAll(ctx, query)
	} else {
		tasks, err = s.tasks.SearchVisibleTo(ctx, p.ID, query)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.toViews(ctx, tasks), nil
}

// Get returns a single task, authorized per the read rule.
func (s *TaskService) Get(ctx context.Context, p models.Principal, id string) (*TaskView, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(p, task) {
		return nil, apperr.Authorization("not authorized to view this task")
	}
	return s.toView(ctx, task), nil
}

// Update applies a patch to an existing task. Existence is checked
// before authorization: an absent task is not-found, never forbidden.
// Owner and creation time are immutable.
func (s *TaskService) Update(ctx context.Context, p models.Principal, id string, in UpdateTaskInput) (*TaskView, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanMutate(p, task, access.OpUpdate) {
		return nil, apperr.Authorization("not authorized to update this task")
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
		task.Description = *in.Description
	}
	if in.Status != nil {
		status, err := models.ParseStatus(*in.Status)
		if err != nil {
			return nil, apperr.Validation("status must be todo, in-progress or done")
		}
		task.Status = status
	}
	if in.ClearAssignee {
		task.AssignedTo = nil
	} else if in.AssignedTo != nil {
		assignee, err := s.normalizeAssignee(ctx, in.AssignedTo)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignee
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperr.NotFound("task not found")
		}
		return nil, apperr.Internal(err)
	}
	return s.toView(ctx, task), nil
}

// Delete removes a task. Only owners and admins may delete; a second
// delete of the same id reports not-found.
func (s *TaskService) Delete(ctx context.Context, p models.Principal, id string) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanMutate(p, task, access.OpDelete) {
		return apperr.Authorization("not authorized to delete this task")
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("task not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *TaskService) load(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if task == nil {
		return nil, apperr.NotFound("task not found")
	}
	return task, nil
}

// normalizeAssignee validates referential integrity: a non-empty
// assignee must name an existing user. The empty string means
// "unassigned" on the wire and is stored as nil.
func (s *TaskService) normalizeAssignee(ctx context.Context, assignedTo *string) (*string, error) {
	if assignedTo == nil || *assignedTo == "" {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, *assignedTo)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.Validation(fmt.Sprintf("assigned user %s does not exist", *assignedTo))
	}
	id := user.ID
	return &id, nil
}

func (s *TaskService) toViews(ctx context.Context, tasks []*models.Task) []*TaskView {
	// Resolve each referenced user once per call.
	refs := make(map[string]*UserRef)
	views := make([]*TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = s.view(ctx, t, refs)
	}
	return views
}

func (s *TaskService) toView(ctx context.Context, task *models.Task) *TaskView {
	return s.view(ctx, task, make(map[string]*UserRef))
}

func (s *TaskService) view(ctx context.Context, t *models.Task, refs map[string]*UserRef) *TaskView {
	view := &TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		OwnerID:     t.OwnerID,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
	}
	view.Owner = s.resolveRef(ctx, t.OwnerID, refs)
	if t.AssignedTo != nil {
		view.Assignee = s.resolveRef(ctx, *t.AssignedTo, refs)
	}
	return view
}

// resolveRef is best-effort: a reference to a user that cannot be
// loaded leaves the joined field empty rather than failing the read.
func (s *TaskService) resolveRef(ctx context.Context, userID string, refs map[string]*UserRef) *UserRef {
	if ref, ok := refs[userID]; ok {
		return ref
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		refs[userID] = nil
		return nil
	}
	ref := &UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
	refs[userID] = ref
	return ref
}

func validateTitle(title string) error {
	if title == "" {
		return apperr.Validation("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return apperr.Validation("title cannot exceed 100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return apperr.Validation("description is required")
	}
	if len([]rune(description)) > maxDescriptionLength {
		return apperr.Validation("description cannot exceed 500 characters")
	}
	return nil
}
