package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rsvp-harvester-go/internal/models"
)

func TestNaturalLanguageParserIntroPattern(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())
	received := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	msg := models.EmailMessage{
		Body:       "Hi, I'm Femi Bello and I'll be attending to celebrate Bola Ahmed.",
		From:       "Femi Bello <femi@x.com>",
		ReceivedAt: received,
	}

	record := parser.TryParse(msg)
	assert.NotNil(t, record)
	assert.Equal(t, "Femi Bello", record.Name)
	assert.Equal(t, "femi@x.com", record.Email)
	assert.Equal(t, "Bola Ahmed", record.Celebrating)
	assert.Equal(t, "Extracted from email body", record.Notes)
	assert.Equal(t, received, record.Timestamp)
}

func TestNaturalLanguageParserIAmPattern(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	msg := models.EmailMessage{Body: "Hello, i am Jane Okoro and happy to join."}
	record := parser.TryParse(msg)

	assert.NotNil(t, record)
	assert.Equal(t, "Jane Okoro", record.Name)
}

func TestNaturalLanguageParserStatedNamePattern(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	msg := models.EmailMessage{Body: "Good day. My name is Kola Ade, see you there."}
	record := parser.TryParse(msg)

	assert.NotNil(t, record)
	assert.Equal(t, "Kola Ade", record.Name)
}

func TestNaturalLanguageParserSignatureHeuristic(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	msg := models.EmailMessage{Body: "Counting down to the party!\n\nWarm regards,\nJane Okoro\n"}
	record := parser.TryParse(msg)

	assert.NotNil(t, record)
	assert.Equal(t, "Jane Okoro", record.Name)
}

func TestNaturalLanguageParserSignatureOnlyScansLastLines(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	// The two-word line sits more than five lines from the end
	body := "Jane Okoro\nwrote to say\nshe is coming\nwith a guest\nand a gift\nsee attached\nmore details below"
	msg := models.EmailMessage{Body: body}

	assert.Nil(t, parser.TryParse(msg))
}

func TestNaturalLanguageParserRosterMatching(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	// Both celebrants mentioned, out of roster order in the text
	msg := models.EmailMessage{Body: "I'm Femi Bello, coming for bola ahmed and Ada Okafor!"}
	record := parser.TryParse(msg)

	assert.NotNil(t, record)
	assert.Equal(t, "Ada Okafor, Bola Ahmed", record.Celebrating)
}

func TestNaturalLanguageParserNoRosterMatch(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	msg := models.EmailMessage{Body: "I'm Femi Bello and I can't wait."}
	record := parser.TryParse(msg)

	assert.NotNil(t, record)
	// Left absent here; the appender applies the default at write time
	assert.Equal(t, "", record.Celebrating)
}

func TestNaturalLanguageParserNoNameReturnsNil(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	msg := models.EmailMessage{Body: "see you at the party, it will be great"}
	assert.Nil(t, parser.TryParse(msg))
}

func TestNaturalLanguageParserRequiresTwoCapitalizedTokens(t *testing.T) {
	parser := NewNaturalLanguageParser(testParserConfig())

	// One token only
	assert.Nil(t, parser.TryParse(models.EmailMessage{Body: "I'm Femi, see you soon"}))

	// Lowercase tokens don't count
	assert.Nil(t, parser.TryParse(models.EmailMessage{Body: "I'm femi bello, see you soon"}))
}
