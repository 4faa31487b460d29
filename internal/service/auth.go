package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Heritiana-Nofy/task-manager-mern/internal/apperr"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/auth"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/models"
	"github.com/Heritiana-Nofy/task-manager-mern/internal/repository"
)

const minPasswordLength = 6

// invalidCredentials is the single message for every login failure.
// Unknown email and wrong password must be indistinguishable so the
// endpoint cannot be used to enumerate accounts.
const invalidCredentials = "invalid credentials"

// PublicUser is the client-facing projection of a user; the credential
// never leaves the service.
type PublicUser struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func toPublicUser(u *models.User) PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenIssuer
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user and returns an issued token alongside the
// public user fields. The role defaults to "user" when unspecified.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (string, PublicUser, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return "", PublicUser{}, apperr.Validation("name is required")
	}
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		return "", PublicUser{}, apperr.Validation("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return "", PublicUser{}, apperr.Validation("password must be at least 6 characters")
	}
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return "", PublicUser{}, apperr.Validation("role must be user or admin")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", PublicUser{}, apperr.Internal(err)
	}

	user := &models.User{
		ID:           "u_" + uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         parsedRole,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateEmail {
			return "", PublicUser{}, apperr.Conflict("email already registered")
		}
		return "", PublicUser{}, apperr.Internal(err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", PublicUser{}, apperr.Internal(err)
	}
	return token, toPublicUser(user), nil
}

// Login checks credentials and returns an issued token alongside the
// public user fields.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, PublicUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", PublicUser{}, apperr.Validation("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", PublicUser{}, apperr.Internal(err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return "", PublicUser{}, apperr.Authentication(invalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", PublicUser{}, apperr.Internal(err)
	}
	return token, toPublicUser(user), nil
}

// ResolvePrincipal turns a bearer token into the current principal.
// The user record is loaded fresh so a role read here is never stale.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (models.Principal, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.Principal{}, apperr.Authentication("not authorized to access this route")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Principal{}, apperr.Internal(err)
	}
	if user == nil {
		return models.Principal{}, apperr.Authentication("not authorized to access this route")
	}
	return models.Principal{ID: user.ID, Role: user.Role}, nil
}

// Me returns the public record of the authenticated principal.
func (s *AuthService) Me(ctx context.Context, p models.Principal) (PublicUser, error) {
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return PublicUser{}, apperr.Internal(err)
	}
	if user == nil {
		return PublicUser{}, apperr.NotFound("user not found")
	}
	return toPublicUser(user), nil
}

// Users returns every registered user. Admin only; the gate lives
// here, server-side, not in any client.
func (s *AuthService) Users(ctx context.Context, p models.Principal) ([]PublicUser, error) {
	if !p.IsAdmin() {
		return nil, apperr.Authorization("admin role required")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	public := make([]PublicUser, len(users))
	for i, u := range users {
		public[i] = toPublicUser(u)
	}
	return public, nil
}
