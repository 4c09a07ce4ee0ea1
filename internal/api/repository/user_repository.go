package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ctchen222/fatty-hosting/internal/api/models"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api.repository")

// ErrEmailTaken is returned when a user with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository defines the interface for user data operations.
// Users are never updated or deleted.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type sqliteUserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewUserRepository creates a new SQLite-based UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// CreateUser inserts a new user. Email uniqueness is enforced by the table's
// UNIQUE constraint and reported as ErrEmailTaken.
func (r *sqliteUserRepository) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	now := r.now()
	query := `INSERT INTO users (email, password, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, email, passwordHash, name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByEmail retrieves a user by email. A missing user yields (nil, nil).
func (r *sqliteUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByEmail")
	defer span.End()

	var user models.User
	query := `SELECT id, email, password, name, created_at, updated_at FROM users WHERE email = ?`
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No user found is not an application error
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by id. A missing user yields (nil, nil).
func (r *sqliteUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByID")
	defer span.End()

	var user models.User
	query := `SELECT id, email, password, name, created_at, updated_at FROM users WHERE id = ?`
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
