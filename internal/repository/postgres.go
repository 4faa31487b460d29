package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
)

// uniqueViolation is the Postgres error code for a unique constraint
// violation.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err = ensureSchema(db); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id            TEXT PRIMARY KEY,
            name          TEXT NOT NULL,
            email         TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role          TEXT NOT NULL,
            created_at    TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS tasks (
            id          TEXT PRIMARY KEY,
            title       TEXT NOT NULL,
            description TEXT NOT NULL,
            status      TEXT NOT NULL,
            owner_id    TEXT NOT NULL,
            assigned_to TEXT,
            created_at  TIMESTAMPTZ NOT NULL
        )`)
	return err
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Users returns the user repository view of the shared handle.
func (r *PostgresRepository) Users() UserRepository { return (*postgresUsers)(r) }

// Tasks returns the task repository view of the shared handle.
func (r *PostgresRepository) Tasks() TaskRepository { return (*postgresTasks)(r) }

type postgresUsers PostgresRepository

func (r *postgresUsers) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, name, email, password_hash, role, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *postgresUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUsers) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var role string
		err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
		if err != nil {
			return nil, err
		}
		user.Role = models.Role(role)
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return user, nil
}

type postgresTasks PostgresRepository

const taskColumns = `id, title, description, status, owner_id, assigned_to, created_at`

func (r *postgresTasks) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, string(task.Status),
		task.OwnerID, nullable(task.AssignedTo), task.CreatedAt)
	return err
}

func (r *postgresTasks) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *postgresTasks) ListAll(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	return r.queryTasks(ctx, query)
}

func (r *postgresTasks) ListVisibleTo(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
              WHERE owner_id = $1 OR assigned_to = $1 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, userID)
}

func (r *postgresTasks) SearchAll(ctx context.Context, titleSubstring string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE title ILIKE $1 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, "%"+titleSubstring+"%")
}

func (r *postgresTasks) SearchVisibleTo(ctx context.Context, userID, titleSubstring string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
              WHERE (owner_id = $1 OR assigned_to = $1) AND title ILIKE $2 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, userID, "%"+titleSubstring+"%")
}

// Update persists title, description, status and assignee. Owner and
// creation time are immutable and deliberately absent from the SET
// clause.
func (r *postgresTasks) Update(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks SET title = $1, description = $2, status = $3, assigned_to = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, string(task.Status), nullable(task.AssignedTo), task.ID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *postgresTasks) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *postgresTasks) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{}
	var status string
	var assignedTo sql.NullString
	err := row.Scan(&task.ID, &task.Title, &task.Description, &status,
		&task.OwnerID, &assignedTo, &task.CreatedAt)
	if err != nil {
		return nil, err
	}
	task.Status = models.Status(status)
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.String
	}
	return task, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
