package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ctchen222/fatty-hosting/internal/api/models"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrRequestNotFound is returned when a server request id does not exist.
var ErrRequestNotFound = errors.New("server request not found")

// RequestRepository persists hosting requests. Rows are never deleted.
type RequestRepository interface {
	Create(ctx context.Context, req *models.ServerRequest) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ServerRequest, error)
	GetByID(ctx context.Context, id int64) (*models.ServerRequest, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error
}

type sqliteRequestRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRequestRepository creates a new SQLite-based RequestRepository.
func NewRequestRepository(db *sqlx.DB) RequestRepository {
	return &sqliteRequestRepository{db: db, now: utcNow}
}

// Create inserts req with status pending and returns its id. The caller's
// struct is updated with the assigned id, status and timestamps.
func (r *sqliteRequestRepository) Create(ctx context.Context, req *models.ServerRequest) (int64, error) {
	ctx, span := tracer.Start(ctx, "RequestRepository.Create", trace.WithAttributes(
		attribute.Int64("user.id", req.UserID),
	))
	defer span.End()

	now := r.now()
	query := `
		INSERT INTO server_requests
			(user_id, server_name, server_type, player_count, amp_username, amp_password, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		req.UserID, req.ServerName, req.ServerType, req.PlayerCount,
		req.AmpUsername, req.PanelSecret, models.StatusPending, now, now,
	)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to create server request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read server request id: %w", err)
	}

	req.ID = id
	req.Status = models.StatusPending
	req.CreatedAt = now
	req.UpdatedAt = now
	return id, nil
}

// ListByUser returns the user's requests, newest first. The panel secret is
// not selected.
func (r *sqliteRequestRepository) ListByUser(ctx context.Context, userID int64) ([]models.ServerRequest, error) {
	ctx, span := tracer.Start(ctx, "RequestRepository.ListByUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	requests := []models.ServerRequest{}
	query := `
		SELECT id, user_id, server_name, server_type, player_count, amp_username, status, created_at, updated_at
		FROM server_requests
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list server requests: %w", err)
	}
	return requests, nil
}

// GetByID retrieves a request including its panel secret. A missing
// request yields (nil, nil).
func (r *sqliteRequestRepository) GetByID(ctx context.Context, id int64) (*models.ServerRequest, error) {
	ctx, span := tracer.Start(ctx, "RequestRepository.GetByID")
	defer span.End()

	var req models.ServerRequest
	query := `
		SELECT id, user_id, server_name, server_type, player_count, amp_username, amp_password, status, created_at, updated_at
		FROM server_requests
		WHERE id = ?`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get server request: %w", err)
	}
	return &req, nil
}

// UpdateStatus sets the status and refreshes updated_at.
func (r *sqliteRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus) error {
	ctx, span := tracer.Start(ctx, "RequestRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("request.id", id),
		attribute.String("request.status", string(status)),
	))
	defer span.End()

	query := `UPDATE server_requests SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, r.now(), id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update server request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrRequestNotFound
	}
	return nil
}
