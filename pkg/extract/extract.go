package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Shape describes the payload expected inside a model response.
type Shape int

const (
	// PlainText expects freeform content, possibly fenced or prefixed with
	// assistant filler.
	PlainText Shape = iota
	// JSONObject expects a single JSON object somewhere in the response.
	JSONObject
)

// Fenced code blocks, with or without a language tag. The last pattern
// catches a closing fence glued to the final content line.
//
//nolint:gochecknoglobals // Compiled patterns
var fencedBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\\n(.*?)\\n[ \t]*```"),
	regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]+(.*?)```"),
	regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\\n(.*?)```"),
}

// Common assistant preambles that precede the actual content.
//
//nolint:gochecknoglobals // Compiled patterns
var introPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(here is[^\n]*\n+)+`),
	regexp.MustCompile(`(?i)^(here's[^\n]*\n+)+`),
	regexp.MustCompile(`(?i)^(below is[^\n]*\n+)+`),
	regexp.MustCompile(`(?i)^(the (customized|tailored|updated|generated) [^\n]*\n+)+`),
	regexp.MustCompile(`^("[^"\n]*"|'[^'\n]*')[ \t]*\n+`),
}

// Extract pulls the structured payload out of raw model text. For JSONObject
// it tries, in order: a fenced code block containing an object, the first
// decodable top-level object in the text, and finally the whole trimmed
// response. For PlainText it unwraps fenced blocks and strips assistant
// preambles. Extract is pure and never panics; an unusable response is
// reported as an error.
func Extract(raw string, shape Shape) (payload string, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		err = errors.New("empty response")
		return payload, err
	}

	if shape == JSONObject {
		payload, err = extractJSONObject(trimmed)
		return payload, err
	}

	payload = extractPlainText(trimmed)
	return payload, err
}

// extractJSONObject runs the ordered JSON extraction strategies.
func extractJSONObject(trimmed string) (payload string, err error) {
	// Strategy 1: fenced code block containing an object.
	for _, pattern := range fencedBlockPatterns {
		match := pattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		block := strings.TrimSpace(match[1])
		if strings.HasPrefix(block, "{") && gjson.Valid(block) {
			payload = block
			return payload, err
		}
	}

	// Strategy 2: first decodable top-level object. The streaming decoder
	// stops at the end of the value, so trailing prose does not break parsing.
	payload, found := firstJSONObject(trimmed)
	if found {
		return payload, err
	}

	// Strategy 3: the whole trimmed response.
	if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
		payload = trimmed
		return payload, err
	}

	err = errors.New("no JSON object found in response")
	return payload, err
}

// firstJSONObject scans the text for the first position where a complete JSON
// object decodes.
func firstJSONObject(text string) (payload string, found bool) {
	for idx := 0; idx < len(text); idx++ {
		if text[idx] != '{' {
			continue
		}

		decoder := json.NewDecoder(strings.NewReader(text[idx:]))
		var obj json.RawMessage
		if decodeErr := decoder.Decode(&obj); decodeErr == nil {
			payload = string(obj)
			found = true
			return payload, found
		}
	}

	return payload, found
}

// extractPlainText unwraps fenced blocks or strips assistant preambles.
func extractPlainText(trimmed string) (payload string) {
	// Prefer fenced content when present.
	for _, pattern := range fencedBlockPatterns {
		match := pattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		block := strings.TrimSpace(match[1])
		if block != "" {
			payload = block
			return payload
		}
	}

	// No fences - strip common intro lines.
	cleaned := trimmed
	for _, pattern := range introPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		// Stripping ate everything - the original is better than nothing.
		payload = trimmed
		return payload
	}

	payload = cleaned
	return payload
}
