package extract

import (
	"github.com/sirupsen/logrus"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/models"
)

// Strategy is one attempt at turning a raw message into a guest record.
// A nil result means the strategy could not produce a usable record.
type Strategy interface {
	Name() string
	TryParse(msg models.EmailMessage) *models.RsvpRecord
}

// Pipeline runs an ordered cascade of strategies against each message.
// The first strategy that yields a record with a non-empty name wins.
type Pipeline struct {
	strategies []Strategy
}

// NewPipeline builds the default cascade: structured body first, then
// prose patterns, then the form-notification guard
func NewPipeline(cfg *config.ParserConfig) *Pipeline {
	structured := NewStructuredParser(cfg)
	return &Pipeline{
		strategies: []Strategy{
			structured,
			NewNaturalLanguageParser(cfg),
			NewFormNotificationParser(cfg, structured),
		},
	}
}

// NewPipelineWithStrategies builds a cascade from an explicit strategy list
func NewPipelineWithStrategies(strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies}
}

// Extract runs the cascade. Returns nil when every strategy fails, which
// the caller counts as a parse failure rather than a fatal fault.
func (p *Pipeline) Extract(msg models.EmailMessage) *models.RsvpRecord {
	for _, strategy := range p.strategies {
		record := strategy.TryParse(msg)
		if record == nil || record.Name == "" {
			continue
		}

		logrus.Debugf("Strategy %s extracted record for %q from message %s", strategy.Name(), record.Name, msg.ID)
		return record
	}

	logrus.Debugf("No strategy produced a usable record for message %s", msg.ID)
	return nil
}
