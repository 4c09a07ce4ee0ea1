// Package notifier sends the templated emails triggered by hosting request
// submission and approval.
package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"ctchen222/fatty-hosting/internal/api/apperror"

	"github.com/wneessen/go-mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks

var tracer = otel.Tracer("notifier")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// RequestSummary is everything the administrator needs to provision a server.
type RequestSummary struct {
	RequestID   int64
	UserName    string
	UserEmail   string
	ServerName  string
	ServerType  string
	PlayerCount int
	AmpUsername string
	PanelSecret string
}

// ReadyNotice tells a user their server has been provisioned.
type ReadyNotice struct {
	UserEmail   string
	UserName    string
	ServerName  string
	AmpUsername string
}

// Notifier delivers request lifecycle emails. Both methods return an
// apperror of kind delivery when the transport fails.
type Notifier interface {
	NotifyAdmin(ctx context.Context, summary RequestSummary) error
	NotifyUserReady(ctx context.Context, notice ReadyNotice) error
}

// Sender is the transport used by MailNotifier; *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Options configures a MailNotifier.
type Options struct {
	From       string
	AdminEmail string
	PanelURL   string
}

// MailNotifier renders HTML emails and hands them to a Sender.
type MailNotifier struct {
	sender Sender
	opts   Options
}

// NewMailNotifier creates a MailNotifier delivering through sender.
func NewMailNotifier(sender Sender, opts Options) *MailNotifier {
	return &MailNotifier{sender: sender, opts: opts}
}

// NewSMTPClient creates an authenticated SMTP client requiring STARTTLS.
func NewSMTPClient(host string, port int, username, password string) (*mail.Client, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client, nil
}

// NotifyAdmin sends the full request details, panel password included, to
// the administrator address.
func (n *MailNotifier) NotifyAdmin(ctx context.Context, summary RequestSummary) error {
	ctx, span := tracer.Start(ctx, "Notifier.NotifyAdmin", trace.WithAttributes(
		attribute.Int64("request.id", summary.RequestID),
	))
	defer span.End()

	body, err := RenderAdminRequest(summary)
	if err != nil {
		return apperror.Delivery("Failed to render admin email", err)
	}

	subject := fmt.Sprintf("New FATTY HOSTING Server Request #%d", summary.RequestID)
	if err := n.send(ctx, n.opts.AdminEmail, subject, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "admin email failed")
		slog.ErrorContext(ctx, "Error sending server request email", "request_id", summary.RequestID, "error", err)
		return apperror.Delivery("Failed to send admin notification", err)
	}

	slog.InfoContext(ctx, "Server request email sent", "request_id", summary.RequestID)
	return nil
}

// NotifyUserReady tells the requesting user their server is ready.
func (n *MailNotifier) NotifyUserReady(ctx context.Context, notice ReadyNotice) error {
	ctx, span := tracer.Start(ctx, "Notifier.NotifyUserReady")
	defer span.End()

	body, err := RenderUserReady(notice, n.opts.PanelURL, n.opts.AdminEmail)
	if err != nil {
		return apperror.Delivery("Failed to render ready email", err)
	}

	if err := n.send(ctx, notice.UserEmail, "Your FATTY HOSTING Server is Ready!", body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ready email failed")
		slog.ErrorContext(ctx, "Error sending server ready email", "to", notice.UserEmail, "error", err)
		return apperror.Delivery("Failed to send ready notification", err)
	}

	slog.InfoContext(ctx, "Server ready email sent", "to", notice.UserEmail)
	return nil
}

func (n *MailNotifier) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.opts.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	return n.sender.DialAndSendWithContext(ctx, msg)
}

// RenderAdminRequest renders the administrator notification body.
func RenderAdminRequest(summary RequestSummary) (string, error) {
	return render("admin_request.html", summary)
}

// RenderUserReady renders the user ready notification body.
func RenderUserReady(notice ReadyNotice, panelURL, supportEmail string) (string, error) {
	return render("user_ready.html", struct {
		ReadyNotice
		PanelURL     string
		SupportEmail string
	}{notice, panelURL, supportEmail})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// LogNotifier only logs notifications. It is used when SMTP credentials
// are not configured in development.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyAdmin(ctx context.Context, summary RequestSummary) error {
	n.log.InfoContext(ctx, "mail disabled: admin notification",
		"request_id", summary.RequestID,
		"user_email", summary.UserEmail,
		"server_name", summary.ServerName,
	)
	return nil
}

func (n *LogNotifier) NotifyUserReady(ctx context.Context, notice ReadyNotice) error {
	n.log.InfoContext(ctx, "mail disabled: ready notification",
		"to", notice.UserEmail,
		"server_name", notice.ServerName,
	)
	return nil
}
