package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFieldBasic(t *testing.T) {
	body := "Name: Jane Okoro\nEmail: jane@x.com\nNotes: Vegan"

	assert.Equal(t, "Jane Okoro", ExtractField(body, []string{"name"}))
	assert.Equal(t, "jane@x.com", ExtractField(body, []string{"email"}))
	assert.Equal(t, "Vegan", ExtractField(body, []string{"notes"}))
}

func TestExtractFieldCaseInsensitive(t *testing.T) {
	body := "GUEST NAME - Kola Ade"

	assert.Equal(t, "Kola Ade", ExtractField(body, []string{"guest name"}))
}

func TestExtractFieldCandidateOrder(t *testing.T) {
	body := "Phone: 0801 234 5678\nEmail: jane@x.com"

	// First candidate that matches wins, regardless of position in the body
	assert.Equal(t, "0801 234 5678", ExtractField(body, []string{"phone", "email"}))
	assert.Equal(t, "jane@x.com", ExtractField(body, []string{"email", "phone"}))
}

func TestExtractFieldStripsLeadingPunctuation(t *testing.T) {
	assert.Equal(t, "Jane Okoro", ExtractField("Name - Jane Okoro", []string{"name"}))
	assert.Equal(t, "Jane Okoro", ExtractField("Name:   Jane Okoro  ", []string{"name"}))
}

func TestExtractFieldSingleLineOnly(t *testing.T) {
	body := "Notes: first line\nsecond line"

	value := ExtractField(body, []string{"notes"})
	assert.Equal(t, "first line", value)
	assert.NotContains(t, value, "\n")
}

func TestExtractFieldRejectsEmptyValue(t *testing.T) {
	assert.Equal(t, "", ExtractField("Name:\nEmail: jane@x.com", []string{"name"}))
	assert.Equal(t, "", ExtractField("Name:   ", []string{"name"}))
}

func TestExtractFieldRejectsOverlongValue(t *testing.T) {
	body := "Notes: " + strings.Repeat("x", maxFieldLength+1)
	assert.Equal(t, "", ExtractField(body, []string{"notes"}))

	// Exactly at the limit is still accepted
	body = "Notes: " + strings.Repeat("x", maxFieldLength)
	assert.Len(t, ExtractField(body, []string{"notes"}), maxFieldLength)
}

func TestExtractFieldFallsThroughRejectedCandidates(t *testing.T) {
	body := "Phone:\nEmail: jane@x.com"

	// The empty "Phone:" match is rejected, the next candidate is tried
	assert.Equal(t, "jane@x.com", ExtractField(body, []string{"phone", "email"}))
}

func TestExtractFieldNoMatch(t *testing.T) {
	assert.Equal(t, "", ExtractField("hello there", []string{"name", "full name"}))
	assert.Equal(t, "", ExtractField("", []string{"name"}))
}

func TestExtractFieldValueBounds(t *testing.T) {
	bodies := []string{
		"Name: Jane Okoro\nEmail: jane@x.com",
		"name - Kola Ade",
		"Notes: a",
		"Notes: first\nsecond\nthird",
	}

	for _, body := range bodies {
		for _, labels := range [][]string{{"name"}, {"email"}, {"notes"}} {
			value := ExtractField(body, labels)
			if value == "" {
				continue
			}
			assert.GreaterOrEqual(t, len(value), 1)
			assert.LessOrEqual(t, len(value), maxFieldLength)
			assert.NotContains(t, value, "\n")
			assert.NotContains(t, value, "\r")
		}
	}
}

func TestSenderAddress(t *testing.T) {
	assert.Equal(t, "jane@x.com", SenderAddress("Jane Okoro <jane@x.com>"))
	assert.Equal(t, "jane@x.com", SenderAddress("jane@x.com"))
	assert.Equal(t, "jane@x.com", SenderAddress("\"Okoro, Jane\" <jane@x.com>"))
	assert.Equal(t, "", SenderAddress(""))
	assert.Equal(t, "", SenderAddress("not an address"))
}
