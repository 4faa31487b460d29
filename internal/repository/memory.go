package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
)

// MemoryUserRepository is an in-memory UserRepository for tests and
// local development. Safe for concurrent use.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		copied := u
		return &copied, nil
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		copied := u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// MemoryTaskRepository is an in-memory TaskRepository for tests and
// local development. Safe for concurrent use.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[string]models.Task)}
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *MemoryTaskRepository) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tasks[id]; ok {
		copied := cloneTask(&t)
		return &copied, nil
	}
	return nil, nil
}

func (r *MemoryTaskRepository) ListAll(_ context.Context) ([]*models.Task, error) {
	return r.list(func(*models.Task) bool { return true })
}

func (r *MemoryTaskRepository) ListVisibleTo(_ context.Context, userID string) ([]*models.Task, error) {
	return r.list(func(t *models.Task) bool { return visibleTo(t, userID) })
}

func (r *MemoryTaskRepository) SearchAll(_ context.Context, titleSubstring string) ([]*models.Task, error) {
	return r.list(func(t *models.Task) bool { return titleMatches(t, titleSubstring) })
}

func (r *MemoryTaskRepository) SearchVisibleTo(_ context.Context, userID, titleSubstring string) ([]*models.Task, error) {
	return r.list(func(t *models.Task) bool {
		return visibleTo(t, userID) && titleMatches(t, titleSubstring)
	})
}

func (r *MemoryTaskRepository) Update(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepository) list(match func(*models.Task) bool) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*models.Task
	for id := range r.tasks {
		t := r.tasks[id]
		if match(&t) {
			copied := cloneTask(&t)
			tasks = append(tasks, &copied)
		}
	}
	// Newest first, matching the Postgres ordering.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func visibleTo(t *models.Task, userID string) bool {
	if t.OwnerID == userID {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

func titleMatches(t *models.Task, substring string) bool {
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(substring))
}

// cloneTask deep-copies a task so callers can never alias the stored
// AssignedTo pointer.
func cloneTask(t *models.Task) models.Task {
	copied := *t
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		copied.AssignedTo = &assignee
	}
	return copied
}
