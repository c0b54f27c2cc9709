package chat

import (
	"regexp"
	"strings"
)

// unwantedHeaders are prompt-section artifacts the generation backend
// sometimes echoes back into its answer.
var unwantedHeaders = []string{
	"### YOUR RESPONSE ###",
	"### INSTRUCTIONS FOR THE ASSISTANT ###",
	"### CONVERSATION CONTEXT ###",
	"### PDF CONTENT ###",
	"### USER QUESTION ###",
}

// suggestionMarkers lists the tolerated spellings of the follow-up-questions
// marker, most specific first. Only the first match is honored.
var suggestionMarkers = []string{
	"### SUGGESTED QUESTIONS ###",
	"SUGGESTED QUESTIONS:",
	"### Suggested Questions",
	"##Suggested Questions",
	"Suggested Questions",
	"[Title: SUGGESTED QUESTIONS:]",
}

var blankRunsRE = regexp.MustCompile(`\n\s*\n`)

// parseResponse splits a raw generation into the cleaned answer body and the
// extracted follow-up suggestions.
func parseResponse(raw string) (string, []string) {
	body := raw
	for _, header := range unwantedHeaders {
		body = strings.ReplaceAll(body, header, "")
	}

	var suggestions []string
	for _, marker := range suggestionMarkers {
		i := strings.Index(body, marker)
		if i < 0 {
			continue
		}
		block := body[i+len(marker):]
		body = body[:i]
		suggestions = extractSuggestions(block)
		break
	}

	// Remaining stray section symbols, then blank-line runs down to one
	// blank line.
	body = strings.ReplaceAll(body, "###", "")
	body = blankRunsRE.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body), suggestions
}

// extractSuggestions keeps only numbered lines 1.-3., dropping anything that
// still looks like a header or a bracketed placeholder.
func extractSuggestions(block string) []string {
	var suggestions []string
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "1.") && !strings.HasPrefix(line, "2.") && !strings.HasPrefix(line, "3.") {
			continue
		}
		suggestion := strings.TrimSpace(line[2:])
		if suggestion == "" || strings.HasPrefix(suggestion, "[") || strings.HasPrefix(suggestion, "#") {
			continue
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions
}
