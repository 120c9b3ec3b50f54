package extract

import (
	"regexp"
	"strings"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/models"
)

// signatureScanLines bounds how far up from the end of the body the
// signature heuristic looks
const signatureScanLines = 5

var (
	// "I'm Jane Okoro" / "I am Jane Okoro" — anchor is case-insensitive,
	// the two name tokens must be capitalized
	introNamePattern = regexp.MustCompile(`(?i:\bi(?:'m| am))\s+([A-Z][a-z]+ [A-Z][a-z]+)`)

	// "my name is Jane Okoro"
	statedNamePattern = regexp.MustCompile(`(?i:\bmy name is)\s+([A-Z][a-z]+ [A-Z][a-z]+)`)

	// a line holding exactly two capitalized words and nothing else
	signaturePattern = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)
)

// NaturalLanguageParser extracts guest records from prose bodies using a
// small set of best-effort patterns. It is deliberately a heuristic, not an
// NLP system: the patterns below are the whole contract.
type NaturalLanguageParser struct {
	cfg *config.ParserConfig
}

// NewNaturalLanguageParser creates a new prose body parser
func NewNaturalLanguageParser(cfg *config.ParserConfig) *NaturalLanguageParser {
	return &NaturalLanguageParser{cfg: cfg}
}

// Name identifies the strategy in logs
func (p *NaturalLanguageParser) Name() string {
	return "natural_language"
}

// TryParse implements Strategy. Returns nil when no name pattern matched.
func (p *NaturalLanguageParser) TryParse(msg models.EmailMessage) *models.RsvpRecord {
	name := extractProseName(msg.Body)
	if name == "" {
		return nil
	}

	return &models.RsvpRecord{
		Name:        name,
		Email:       SenderAddress(msg.From),
		Celebrating: p.matchRoster(msg.Body),
		Notes:       p.cfg.NotesPlaceholder,
		Timestamp:   msg.ReceivedAt,
	}
}

// extractProseName tries the intro patterns first, then falls back to a
// signature line near the end of the body
func extractProseName(body string) string {
	if m := introNamePattern.FindStringSubmatch(body); len(m) == 2 {
		return m[1]
	}

	if m := statedNamePattern.FindStringSubmatch(body); len(m) == 2 {
		return m[1]
	}

	return signatureName(body)
}

// signatureName scans the last few lines of the body, returning the first
// line that is exactly two capitalized words
func signatureName(body string) string {
	lines := strings.Split(strings.TrimRight(body, "\r\n \t"), "\n")

	start := len(lines) - signatureScanLines
	if start < 0 {
		start = 0
	}

	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if signaturePattern.MatchString(line) {
			return line
		}
	}

	return ""
}

// matchRoster finds every configured celebrant mentioned in the body,
// joined in roster order. Matching is case-insensitive substring search.
func (p *NaturalLanguageParser) matchRoster(body string) string {
	lower := strings.ToLower(body)

	var found []string
	for _, celebrant := range p.cfg.Roster {
		if celebrant == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(celebrant)) {
			found = append(found, celebrant)
		}
	}

	return strings.Join(found, ", ")
}
