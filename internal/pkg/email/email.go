package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*.html
var templateFS embed.FS

// SESClient is the subset of the SES API the mailer uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Config struct {
	Sender     string
	MaxRetries int
	RetryDelay time.Duration
	// AppURL prefixes request links in emails; empty disables links.
	AppURL string
}

// Mailer sends templated emails through SES behind a circuit breaker.
type Mailer struct {
	client    SESClient
	cfg       Config
	templates *template.Template
	cb        *gobreaker.CircuitBreaker
}

func NewMailer(client SESClient, cfg Config) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	settings := gobreaker.Settings{
		Name:        "SES",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Mailer{
		client:    client,
		cfg:       cfg,
		templates: tmpl,
		cb:        gobreaker.NewCircuitBreaker(settings),
	}, nil
}

// NotificationEmail is the data rendered into notification.html.
type NotificationEmail struct {
	RecipientName string
	Type          string
	Title         string
	Message       string
	Link          string
	SentAt        string
}

// SendNotification renders a notification email and sends it to one address.
func (m *Mailer) SendNotification(ctx context.Context, to string, data NotificationEmail) error {
	if data.SentAt == "" {
		data.SentAt = time.Now().UTC().Format(time.RFC1123)
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, "notification.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	text := fmt.Sprintf("Hello %s,\n\n%s\n", data.RecipientName, data.Message)
	if data.Link != "" {
		text += "\n" + data.Link + "\n"
	}

	return m.send(ctx, to, data.Title, body.String(), text)
}

// RequestLink builds the front-end URL of a request, or "" when AppURL is unset.
func (m *Mailer) RequestLink(requestID string) string {
	if m.cfg.AppURL == "" || requestID == "" {
		return ""
	}
	return m.cfg.AppURL + "/requests/" + requestID
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	// Skip sending if SES is not configured
	if m.client == nil || m.cfg.Sender == "" {
		slog.Warn("SES not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	ctx, span := otel.Tracer("ses-mailer").Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("email.subject", subject))

	input := &ses.SendEmailInput{
		Source: aws.String(m.cfg.Sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
			},
		},
	}

	var lastErr error
retry:
	for attempt := 1; attempt <= m.cfg.MaxRetries; attempt++ {
		_, err := m.cb.Execute(func() (interface{}, error) {
			return m.client.SendEmail(ctx, input)
		})
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", m.cfg.MaxRetries,
			"error", err,
		)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break retry
		}

		// Exponential backoff: delay, 2*delay, 4*delay
		if attempt < m.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break retry
			case <-time.After(m.cfg.RetryDelay * time.Duration(1<<(attempt-1))):
			}
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return fmt.Errorf("failed to send email: %w", lastErr)
}
