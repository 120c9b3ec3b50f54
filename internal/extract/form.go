package extract

import (
	"strings"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/models"
)

// FormNotificationParser recognizes notification emails sent by a
// third-party form service. The body shape is key/value, so after the guard
// matches it delegates entirely to the structured parser.
type FormNotificationParser struct {
	cfg        *config.ParserConfig
	structured *StructuredParser
}

// NewFormNotificationParser creates a new form notification parser
func NewFormNotificationParser(cfg *config.ParserConfig, structured *StructuredParser) *FormNotificationParser {
	return &FormNotificationParser{cfg: cfg, structured: structured}
}

// Name identifies the strategy in logs
func (p *FormNotificationParser) Name() string {
	return "form_notification"
}

// TryParse implements Strategy. Returns nil immediately unless one of the
// configured marker substrings appears in the body.
func (p *FormNotificationParser) TryParse(msg models.EmailMessage) *models.RsvpRecord {
	if !p.matchesGuard(msg.Body) {
		return nil
	}

	return p.structured.TryParse(msg)
}

func (p *FormNotificationParser) matchesGuard(body string) bool {
	for _, marker := range p.cfg.FormMarkers {
		if marker != "" && strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
