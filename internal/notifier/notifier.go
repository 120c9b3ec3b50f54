package notifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/config"
)

// NotificationSink delivers run summaries and run-level errors to the
// operator. Delivery failures are the caller's to log; they never abort a
// run.
type NotificationSink interface {
	Notify(ctx context.Context, subject, body string) error
}

// GmailNotifier sends operator mail through the Gmail API
type GmailNotifier struct {
	service       *gmail.Service
	userEmail     string
	operatorEmail string
}

// NewGmailNotifier creates a new operator notifier
func NewGmailNotifier(creds *config.GmailConfig, cfg *config.NotifyConfig) (*GmailNotifier, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailNotifier{
		service:       service,
		userEmail:     creds.UserEmail,
		operatorEmail: cfg.OperatorEmail,
	}, nil
}

// Notify sends a plain-text message to the operator address, retrying on
// rate-limit errors
func (n *GmailNotifier) Notify(ctx context.Context, subject, body string) error {
	raw := n.buildMessage(subject, body)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := n.service.Users.Messages.Send(n.userEmail, message).Context(ctx).Do()
		if err == nil {
			logrus.Infof("Sent operator notification %q to %s", subject, n.operatorEmail)
			return nil
		}

		lastErr = err
		logrus.Warnf("Failed to send notification (attempt %d/%d): %v", attempt, 3, err)

		if strings.Contains(err.Error(), "quota") || strings.Contains(err.Error(), "rate") {
			waitTime := time.Duration(attempt*attempt) * time.Second
			logrus.Infof("Rate limited, waiting %v before retry", waitTime)
			time.Sleep(waitTime)
		} else {
			break
		}
	}

	return fmt.Errorf("failed to send notification after 3 attempts: %w", lastErr)
}

func (n *GmailNotifier) buildMessage(subject, body string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", n.userEmail))
	b.WriteString(fmt.Sprintf("To: %s\r\n", n.operatorEmail))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return b.String()
}

// NoopNotifier is used when operator notifications are disabled
type NoopNotifier struct{}

// Notify does nothing
func (NoopNotifier) Notify(ctx context.Context, subject, body string) error {
	return nil
}
