package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rsvp-harvester-go/internal/config"
	"rsvp-harvester-go/internal/models"
)

func testParserConfig() *config.ParserConfig {
	return &config.ParserConfig{
		NameFields:        []string{"name", "full name", "guest name"},
		EmailFields:       []string{"email", "e-mail", "email address"},
		CelebratingFields: []string{"celebrating", "attending for", "honoree"},
		NotesFields:       []string{"notes", "comments"},
		Roster:            []string{"Ada Okafor", "Bola Ahmed"},
		FormMarkers:       []string{"New submission from", "formsubmit.co"},
		NotesPlaceholder:  "Extracted from email body",
	}
}

func TestStructuredParserKeyValueBody(t *testing.T) {
	parser := NewStructuredParser(testParserConfig())
	received := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	body := "Name: Jane Okoro\nEmail: jane@x.com\nCelebrating: Ada Okafor\nNotes: Vegan"
	record := parser.Parse(body, "Jane Okoro <jane@x.com>", received)

	assert.Equal(t, "Jane Okoro", record.Name)
	assert.Equal(t, "jane@x.com", record.Email)
	assert.Equal(t, "Ada Okafor", record.Celebrating)
	assert.Equal(t, "Vegan", record.Notes)
	assert.Equal(t, received, record.Timestamp)
}

func TestStructuredParserEmailFallsBackToSender(t *testing.T) {
	parser := NewStructuredParser(testParserConfig())

	body := "Name: Kola Ade\nNotes: Arriving late"
	record := parser.Parse(body, "Kola Ade <kola@x.com>", time.Now())

	assert.Equal(t, "Kola Ade", record.Name)
	assert.Equal(t, "kola@x.com", record.Email)
}

func TestStructuredParserAlwaysReturnsRecord(t *testing.T) {
	parser := NewStructuredParser(testParserConfig())

	record := parser.Parse("hello there", "someone <a@b.com>", time.Now())

	// Parse never refuses; usability is decided by the caller from Name
	assert.Equal(t, "", record.Name)
	assert.Equal(t, "a@b.com", record.Email)
}

func TestStructuredParserTryParseRequiresName(t *testing.T) {
	parser := NewStructuredParser(testParserConfig())

	msg := models.EmailMessage{Body: "hello there", From: "a@b.com"}
	assert.Nil(t, parser.TryParse(msg))

	msg.Body = "Name: Jane Okoro"
	record := parser.TryParse(msg)
	assert.NotNil(t, record)
	assert.Equal(t, "Jane Okoro", record.Name)
}

func TestStructuredParserSynonymLabels(t *testing.T) {
	parser := NewStructuredParser(testParserConfig())

	body := "Guest Name: Jane Okoro\nE-mail: jane@x.com\nAttending for: Bola Ahmed"
	record := parser.Parse(body, "", time.Now())

	assert.Equal(t, "Jane Okoro", record.Name)
	assert.Equal(t, "jane@x.com", record.Email)
	assert.Equal(t, "Bola Ahmed", record.Celebrating)
}
