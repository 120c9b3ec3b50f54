package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/models"
)

// MessageSource fetches candidate RSVP messages from the mailbox. One call
// returns at most maxPerRun messages; repeated runs over overlapping sets
// are expected and handled downstream by the dedup layers.
type MessageSource interface {
	Fetch(ctx context.Context) ([]models.EmailMessage, error)
	Close() error
}

// GmailFetcher implements MessageSource using the Gmail API
type GmailFetcher struct {
	service   *gmail.Service
	userEmail string
	query     string
	maxPerRun int
}

// IMAPFetcher implements MessageSource using IMAP
type IMAPFetcher struct {
	client    *client.Client
	maxPerRun int
	lastCheck time.Time
}

// NewGmailFetcher creates a new Gmail API message source
func NewGmailFetcher(cfg *config.GmailConfig, maxPerRun int) (*GmailFetcher, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailFetcher{
		service:   service,
		userEmail: cfg.UserEmail,
		query:     cfg.SearchQuery,
		maxPerRun: maxPerRun,
	}, nil
}

// NewIMAPFetcher creates a new IMAP message source
func NewIMAPFetcher(cfg *config.GmailConfig, maxPerRun int) (*IMAPFetcher, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return &IMAPFetcher{
		client:    c,
		maxPerRun: maxPerRun,
		lastCheck: time.Now().Add(-24 * time.Hour), // start with emails from the last 24 hours
	}, nil
}

// Fetch fetches candidate messages using the configured Gmail search query
func (f *GmailFetcher) Fetch(ctx context.Context) ([]models.EmailMessage, error) {
	call := f.service.Users.Messages.List(f.userEmail).Q(f.query).MaxResults(int64(f.maxPerRun)).Context(ctx)
	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var emails []models.EmailMessage

	for _, msg := range response.Messages {
		if len(emails) >= f.maxPerRun {
			break
		}

		full, err := f.service.Users.Messages.Get(f.userEmail, msg.Id).Format("full").Context(ctx).Do()
		if err != nil {
			logrus.Warnf("Failed to get message %s: %v", msg.Id, err)
			continue
		}

		email, err := f.parseGmailMessage(full)
		if err != nil {
			logrus.Warnf("Failed to parse message %s: %v", msg.Id, err)
			continue
		}

		emails = append(emails, email)
	}

	return emails, nil
}

// parseGmailMessage parses a Gmail API message into EmailMessage
func (f *GmailFetcher) parseGmailMessage(msg *gmail.Message) (models.EmailMessage, error) {
	email := models.EmailMessage{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		Headers:    make(map[string]string),
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}

	for _, header := range msg.Payload.Headers {
		email.Headers[header.Name] = header.Value

		switch header.Name {
		case "Subject":
			email.Subject = header.Value
		case "From":
			email.From = header.Value
		}
	}

	if err := f.parseGmailBody(msg.Payload, &email); err != nil {
		return email, err
	}

	return email, nil
}

// parseGmailBody recursively parses Gmail message body parts
func (f *GmailFetcher) parseGmailBody(part *gmail.MessagePart, email *models.EmailMessage) error {
	if part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return fmt.Errorf("failed to decode body data: %w", err)
		}

		content := string(data)

		switch part.MimeType {
		case "text/plain":
			email.Body = content
		case "text/html":
			email.HTMLBody = content
		}
	}

	for _, subPart := range part.Parts {
		if err := f.parseGmailBody(subPart, email); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the Gmail fetcher
func (f *GmailFetcher) Close() error {
	// Gmail API service doesn't need explicit closing
	return nil
}

// Fetch fetches candidate messages over IMAP, bounded by the run cap
func (f *IMAPFetcher) Fetch(ctx context.Context) ([]models.EmailMessage, error) {
	_, err := f.client.Select("INBOX", false)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = f.lastCheck

	uids, err := f.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	if len(uids) == 0 {
		f.lastCheck = time.Now()
		return []models.EmailMessage{}, nil
	}

	if len(uids) > f.maxPerRun {
		uids = uids[:f.maxPerRun]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)

	go func() {
		done <- f.client.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchBody, imap.FetchUid}, messages)
	}()

	var emails []models.EmailMessage

	for msg := range messages {
		email, err := f.parseIMAPMessage(msg)
		if err != nil {
			logrus.Warnf("Failed to parse IMAP message: %v", err)
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	f.lastCheck = time.Now()
	return emails, nil
}

// parseIMAPMessage parses an IMAP message into EmailMessage
func (f *IMAPFetcher) parseIMAPMessage(msg *imap.Message) (models.EmailMessage, error) {
	email := models.EmailMessage{
		ID:      strconv.FormatUint(uint64(msg.Uid), 10),
		Headers: make(map[string]string),
	}

	if msg.Envelope != nil {
		email.Subject = msg.Envelope.Subject
		email.ReceivedAt = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			email.From = msg.Envelope.From[0].Address()
		}
	}

	if err := f.parseIMAPBody(msg, &email); err != nil {
		return email, err
	}

	return email, nil
}

// parseIMAPBody parses IMAP message body
func (f *IMAPFetcher) parseIMAPBody(msg *imap.Message, email *models.EmailMessage) error {
	if msg.Body == nil {
		return nil
	}

	section := &imap.BodySectionName{}
	r := msg.GetBody(section)
	if r == nil {
		return fmt.Errorf("failed to get message body")
	}

	entity, err := message.Read(r)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	if mr := entity.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read part: %w", err)
			}

			content, err := io.ReadAll(p.Body)
			if err != nil {
				return fmt.Errorf("failed to read part body: %w", err)
			}

			contentType := p.Header.Get("Content-Type")
			if strings.Contains(contentType, "text/plain") {
				email.Body = string(content)
			} else if strings.Contains(contentType, "text/html") {
				email.HTMLBody = string(content)
			}
		}
	} else {
		content, err := io.ReadAll(entity.Body)
		if err != nil {
			return fmt.Errorf("failed to read message body: %w", err)
		}

		contentType := entity.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") {
			email.HTMLBody = string(content)
		} else {
			email.Body = string(content)
		}
	}

	return nil
}

// Close closes the IMAP fetcher
func (f *IMAPFetcher) Close() error {
	return f.client.Logout()
}
