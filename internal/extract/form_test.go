package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rsvp-harvester-go/internal/models"
)

func newFormParser() *FormNotificationParser {
	cfg := testParserConfig()
	return NewFormNotificationParser(cfg, NewStructuredParser(cfg))
}

func TestFormNotificationParserRecognizedSubmission(t *testing.T) {
	parser := newFormParser()

	msg := models.EmailMessage{
		Body: "New submission from Contact Form\nname: Kola Ade\nemail: kola@x.com",
		From: "noreply@forms.example",
	}

	record := parser.TryParse(msg)
	assert.NotNil(t, record)
	assert.Equal(t, "Kola Ade", record.Name)
	assert.Equal(t, "kola@x.com", record.Email)
}

func TestFormNotificationParserServiceMarker(t *testing.T) {
	parser := newFormParser()

	msg := models.EmailMessage{
		Body: "Delivered by formsubmit.co\nname: Jane Okoro",
	}

	record := parser.TryParse(msg)
	assert.NotNil(t, record)
	assert.Equal(t, "Jane Okoro", record.Name)
}

func TestFormNotificationParserGuardMiss(t *testing.T) {
	parser := newFormParser()

	// A key/value body without any form marker is not this parser's job
	msg := models.EmailMessage{Body: "name: Kola Ade\nemail: kola@x.com"}
	assert.Nil(t, parser.TryParse(msg))
}

func TestFormNotificationParserGuardIsLiteral(t *testing.T) {
	parser := newFormParser()

	// The marker match is a literal substring, not case-insensitive
	msg := models.EmailMessage{Body: "new submission from Contact Form\nname: Kola Ade"}
	assert.Nil(t, parser.TryParse(msg))
}

func TestFormNotificationParserUnparseableSubmission(t *testing.T) {
	parser := newFormParser()

	msg := models.EmailMessage{Body: "New submission from Contact Form\nnothing useful here"}
	assert.Nil(t, parser.TryParse(msg))
}
