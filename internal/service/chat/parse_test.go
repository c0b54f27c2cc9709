package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseSplitsSuggestions(t *testing.T) {
	raw := "The library opens at **8 AM**.\n\n(Source: handbook.pdf, Page: 4)\n\n" +
		"### SUGGESTED QUESTIONS ###\n" +
		"1. What are the weekend hours?\n" +
		"2. How do I reserve a study room?\n" +
		"3. Where is the library located?"

	body, suggestions := parseResponse(raw)

	assert.Equal(t, "The library opens at **8 AM**.\n\n(Source: handbook.pdf, Page: 4)", body)
	require.Len(t, suggestions, 3)
	assert.Equal(t, "What are the weekend hours?", suggestions[0])
	assert.Equal(t, "How do I reserve a study room?", suggestions[1])
	assert.Equal(t, "Where is the library located?", suggestions[2])
}

func TestParseResponseAlternateMarkerSpellings(t *testing.T) {
	for _, marker := range []string{
		"SUGGESTED QUESTIONS:",
		"Suggested Questions",
		"##Suggested Questions",
	} {
		body, suggestions := parseResponse("Answer.\n\n" + marker + "\n1. One?\n2. Two?")
		assert.Equal(t, "Answer.", body, "marker %q", marker)
		assert.Equal(t, []string{"One?", "Two?"}, suggestions, "marker %q", marker)
	}
}

func TestParseResponseDropsTemplatePlaceholders(t *testing.T) {
	raw := "Answer.\n\n### SUGGESTED QUESTIONS ###\n" +
		"1. [First relevant question]\n" +
		"2. A real question?\n" +
		"3. ### not a question"

	_, suggestions := parseResponse(raw)
	assert.Equal(t, []string{"A real question?"}, suggestions)
}

func TestParseResponseStripsEchoedHeaders(t *testing.T) {
	raw := "### YOUR RESPONSE ###\nThe answer.\n\n\n\nMore detail.\n### PDF CONTENT ###"

	body, suggestions := parseResponse(raw)
	assert.Equal(t, "The answer.\n\nMore detail.", body)
	assert.Empty(t, suggestions)
}

func TestParseResponseNoMarker(t *testing.T) {
	body, suggestions := parseResponse("Plain answer with no extras.")
	assert.Equal(t, "Plain answer with no extras.", body)
	assert.Nil(t, suggestions)
}
