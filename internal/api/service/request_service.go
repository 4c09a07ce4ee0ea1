package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"ctchen222/fatty-hosting/internal/api/apperror"
	"ctchen222/fatty-hosting/internal/api/models"
	"ctchen222/fatty-hosting/internal/api/repository"
	"ctchen222/fatty-hosting/internal/notifier"
	"ctchen222/fatty-hosting/internal/validator"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("api.service")

// RequestService orchestrates the hosting request lifecycle:
// submit (pending) -> approve (approved).
type RequestService interface {
	Submit(ctx context.Context, userID int64, req *models.SubmitServerRequest) (int64, error)
	ListForUser(ctx context.Context, userID int64) ([]models.ServerRequest, error)
	Approve(ctx context.Context, requestID int64, adminKey string) error
}

type requestMetrics struct {
	submitted        metric.Int64Counter
	approved         metric.Int64Counter
	deliveryFailures metric.Int64Counter
}

func newRequestMetrics() requestMetrics {
	meter := otel.Meter("api.service")
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Warn("Failed to create counter", "name", name, "error", err)
			c, _ = noop.NewMeterProvider().Meter("noop").Int64Counter(name)
		}
		return c
	}
	return requestMetrics{
		submitted:        counter("hosting_requests_submitted_total", "Hosting requests persisted"),
		approved:         counter("hosting_requests_approved_total", "Hosting requests approved"),
		deliveryFailures: counter("hosting_notification_failures_total", "Lifecycle emails that failed to send"),
	}
}

type requestService struct {
	requests repository.RequestRepository
	users    repository.UserRepository
	notifier notifier.Notifier
	adminKey string
	metrics  requestMetrics
}

// NewRequestService creates a RequestService. An empty adminKey rejects
// every approval.
func NewRequestService(
	requests repository.RequestRepository,
	users repository.UserRepository,
	n notifier.Notifier,
	adminKey string,
) RequestService {
	return &requestService{
		requests: requests,
		users:    users,
		notifier: n,
		adminKey: adminKey,
		metrics:  newRequestMetrics(),
	}
}

// Submit validates and persists a pending request, then notifies the
// administrator. A notification failure is returned to the caller even
// though the row has already been committed.
func (s *requestService) Submit(ctx context.Context, userID int64, req *models.SubmitServerRequest) (int64, error) {
	ctx, span := tracer.Start(ctx, "RequestService.Submit", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	in := *req
	in.ServerName = strings.TrimSpace(in.ServerName)
	in.AmpUsername = strings.TrimSpace(in.AmpUsername)
	if in.ServerType == "" {
		in.ServerType = models.ServerTypeJava
	}
	if err := validator.Struct(&in); err != nil {
		return 0, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return 0, apperror.Unknown("Failed to submit server request", err)
	}
	if user == nil {
		return 0, apperror.Auth("Invalid token")
	}

	row := &models.ServerRequest{
		UserID:      userID,
		ServerName:  in.ServerName,
		ServerType:  in.ServerType,
		PlayerCount: in.PlayerCount,
		AmpUsername: in.AmpUsername,
		PanelSecret: in.AmpPassword,
	}
	id, err := s.requests.Create(ctx, row)
	if err != nil {
		span.RecordError(err)
		return 0, apperror.Unknown("Failed to submit server request", err)
	}
	s.metrics.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("server_type", string(in.ServerType))))
	span.SetAttributes(attribute.Int64("request.id", id))

	err = s.notifier.NotifyAdmin(ctx, notifier.RequestSummary{
		RequestID:   id,
		UserName:    user.Name,
		UserEmail:   user.Email,
		ServerName:  row.ServerName,
		ServerType:  string(row.ServerType),
		PlayerCount: row.PlayerCount,
		AmpUsername: row.AmpUsername,
		PanelSecret: row.PanelSecret,
	})
	if err != nil {
		s.metrics.deliveryFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("email", "admin")))
		span.SetStatus(codes.Error, "admin notification failed")
		slog.ErrorContext(ctx, "Server request persisted but admin notification failed", "request_id", id, "error", err)
		return id, deliveryError(err, "Failed to submit server request")
	}

	slog.InfoContext(ctx, "Server request submitted", "request_id", id, "user_id", userID)
	return id, nil
}

// ListForUser returns the user's requests, newest first.
func (s *requestService) ListForUser(ctx context.Context, userID int64) ([]models.ServerRequest, error) {
	ctx, span := tracer.Start(ctx, "RequestService.ListForUser")
	defer span.End()

	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Unknown("Failed to fetch requests", err)
	}
	return requests, nil
}

// Approve marks the request approved and emails its owner. Approving an
// already approved request re-sends the email.
func (s *requestService) Approve(ctx context.Context, requestID int64, adminKey string) error {
	ctx, span := tracer.Start(ctx, "RequestService.Approve", trace.WithAttributes(
		attribute.Int64("request.id", requestID),
	))
	defer span.End()

	if !s.validAdminKey(adminKey) {
		return apperror.Authorization("Invalid admin key")
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return apperror.Unknown("Failed to approve request", err)
	}
	if req == nil {
		return apperror.NotFound("Request not found")
	}

	user, err := s.users.GetUserByID(ctx, req.UserID)
	if err != nil {
		return apperror.Unknown("Failed to approve request", err)
	}
	if user == nil {
		return apperror.NotFound("Request owner not found")
	}

	if err := s.requests.UpdateStatus(ctx, requestID, models.StatusApproved); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return apperror.NotFound("Request not found")
		}
		return apperror.Unknown("Failed to approve request", err)
	}
	s.metrics.approved.Add(ctx, 1)

	err = s.notifier.NotifyUserReady(ctx, notifier.ReadyNotice{
		UserEmail:   user.Email,
		UserName:    user.Name,
		ServerName:  req.ServerName,
		AmpUsername: req.AmpUsername,
	})
	if err != nil {
		s.metrics.deliveryFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("email", "ready")))
		span.SetStatus(codes.Error, "ready notification failed")
		slog.ErrorContext(ctx, "Request approved but ready notification failed", "request_id", requestID, "error", err)
		return deliveryError(err, "Failed to approve request")
	}

	slog.InfoContext(ctx, "Server request approved", "request_id", requestID, "user_id", user.ID)
	return nil
}

func (s *requestService) validAdminKey(key string) bool {
	if s.adminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) == 1
}

// deliveryError keeps delivery errors from the notifier and wraps anything
// else as one.
func deliveryError(err error, message string) error {
	if apperror.IsKind(err, apperror.KindDelivery) {
		return err
	}
	return apperror.Delivery(message, err)
}
