package memory

import "regexp"

// Extractor identifies a memorable fact in a message, if any. The regex
// implementation is a placeholder for an eventual LLM-based extractor, so
// extraction stays behind this interface.
type Extractor interface {
	// Extract returns the fact text and true when the content contains a
	// declarative statement worth remembering.
	Extract(content string) (string, bool)
}

// factPatterns are checked in order; the first match wins and the whole
// matched span becomes the fact text.
var factPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is (.+)`),
	regexp.MustCompile(`(?i)i am (.+)`),
	regexp.MustCompile(`(?i)i have (.+)`),
	regexp.MustCompile(`(?i)i'm from (.+)`),
	regexp.MustCompile(`(?i)remember that (.+)`),
	regexp.MustCompile(`(?i)importantly, (.+)`),
}

// RegexExtractor matches a fixed ordered list of declarative patterns.
type RegexExtractor struct{}

// Extract implements Extractor.
func (RegexExtractor) Extract(content string) (string, bool) {
	for _, pattern := range factPatterns {
		if loc := pattern.FindString(content); loc != "" {
			return loc, true
		}
	}
	return "", false
}
