package labeler

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/config"
)

// LabelSink tags fully handled messages so the mailbox search query can
// exclude them on later runs. Pure bookkeeping; parsing never reads labels.
type LabelSink interface {
	MarkProcessed(ctx context.Context, messageID string) error
	Close() error
}

// GmailLabeler applies a named label through the Gmail API
type GmailLabeler struct {
	service   *gmail.Service
	userEmail string
	labelName string
	labelID   string
}

// NewGmailLabeler creates a labeler for the configured label name. The
// label is looked up (or created) lazily on first use.
func NewGmailLabeler(cfg *config.GmailConfig) (*GmailLabeler, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailModifyScope},
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

	return &GmailLabeler{
		service:   service,
		userEmail: cfg.UserEmail,
		labelName: cfg.Label,
	}, nil
}

// MarkProcessed adds the processed label to the message
func (l *GmailLabeler) MarkProcessed(ctx context.Context, messageID string) error {
	labelID, err := l.ensureLabel(ctx)
	if err != nil {
		return err
	}

	_, err = l.service.Users.Messages.Modify(l.userEmail, messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to label message %s: %w", messageID, err)
	}

	return nil
}

// ensureLabel resolves the configured label name to its ID, creating the
// label when it does not exist yet
func (l *GmailLabeler) ensureLabel(ctx context.Context) (string, error) {
	if l.labelID != "" {
		return l.labelID, nil
	}

	list, err := l.service.Users.Labels.List(l.userEmail).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list labels: %w", err)
	}

	for _, label := range list.Labels {
		if label.Name == l.labelName {
			l.labelID = label.Id
			return l.labelID, nil
		}
	}

	created, err := l.service.Users.Labels.Create(l.userEmail, &gmail.Label{
		Name:                  l.labelName,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create label %s: %w", l.labelName, err)
	}

	logrus.Infof("Created Gmail label %s", l.labelName)
	l.labelID = created.Id
	return l.labelID, nil
}

// Close closes the Gmail labeler
func (l *GmailLabeler) Close() error {
	return nil
}

// IMAPLabeler marks handled messages with a keyword flag over IMAP
type IMAPLabeler struct {
	client  *client.Client
	keyword string
}

// NewIMAPLabeler creates a labeler with its own IMAP connection
func NewIMAPLabeler(cfg *config.GmailConfig) (*IMAPLabeler, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return &IMAPLabeler{client: c, keyword: cfg.Label}, nil
}

// MarkProcessed sets the keyword flag on the message named by its UID
func (l *IMAPLabeler) MarkProcessed(ctx context.Context, messageID string) error {
	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid IMAP message UID %q: %w", messageID, err)
	}

	if _, err := l.client.Select("INBOX", false); err != nil {
		return fmt.Errorf("failed to select INBOX: %w", err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(uid))

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{l.keyword}

	if err := l.client.UidStore(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("failed to flag message %s: %w", messageID, err)
	}

	return nil
}

// Close closes the IMAP labeler
func (l *IMAPLabeler) Close() error {
	return l.client.Logout()
}

// NoopLabeler is used in dry runs where no mailbox bookkeeping is wanted
type NoopLabeler struct{}

// MarkProcessed does nothing
func (NoopLabeler) MarkProcessed(ctx context.Context, messageID string) error {
	return nil
}

// Close does nothing
func (NoopLabeler) Close() error {
	return nil
}
