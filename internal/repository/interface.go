package repository

import (
	"context"
	"errors"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
)

// ErrNotFound is returned by Update and Delete when no record matches.
// GetByID-style lookups return (nil, nil) for a missing record instead.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned by UserRepository.Create when the
// email unique constraint is violated.
var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// ListAll returns every task; ListVisibleTo only tasks the given
	// user owns or is assigned to.
	ListAll(ctx context.Context) ([]*models.Task, error)
	ListVisibleTo(ctx context.Context, userID string) ([]*models.Task, error)
	// SearchAll and SearchVisibleTo filter the corresponding listings
	// by case-insensitive title substring.
	SearchAll(ctx context.Context, titleSubstring string) ([]*models.Task, error)
	SearchVisibleTo(ctx context.Context, userID, titleSubstring string) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}
