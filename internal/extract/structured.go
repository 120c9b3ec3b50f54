package extract

import (
	"time"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/models"
)

// StructuredParser extracts guest records from key/value style bodies, the
// kind form-generated emails produce. One ExtractField pass per target
// field, using the per-field synonym lists from config.
type StructuredParser struct {
	cfg *config.ParserConfig
}

// NewStructuredParser creates a new structured body parser
func NewStructuredParser(cfg *config.ParserConfig) *StructuredParser {
	return &StructuredParser{cfg: cfg}
}

// Name identifies the strategy in logs
func (p *StructuredParser) Name() string {
	return "structured"
}

// Parse always returns a record; its Name may be empty and the caller
// decides usability from that
func (p *StructuredParser) Parse(body, sender string, received time.Time) models.RsvpRecord {
	record := models.RsvpRecord{
		Name:        ExtractField(body, p.cfg.NameFields),
		Email:       ExtractField(body, p.cfg.EmailFields),
		Celebrating: ExtractField(body, p.cfg.CelebratingFields),
		Notes:       ExtractField(body, p.cfg.NotesFields),
		Timestamp:   received,
	}

	if record.Email == "" {
		record.Email = SenderAddress(sender)
	}

	return record
}

// TryParse implements Strategy
func (p *StructuredParser) TryParse(msg models.EmailMessage) *models.RsvpRecord {
	record := p.Parse(msg.Body, msg.From, msg.ReceivedAt)
	if record.Name == "" {
		return nil
	}
	return &record
}
