// Package redaction masks payment details and credentials in chat text.
package redaction

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// sensitivePatterns are applied to every message before it is stored.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z]{2}\d{2}[ ]?(?:[A-Z0-9]{4}[ ]?){2,7}[A-Z0-9]{1,4}\b`), // IBANs, before card numbers
	regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),                                  // card numbers
	regexp.MustCompile(`(?i)\b(?:cvv|cvc)2?\s*[:=]?\s*\d{3,4}\b`),                    // card security codes
	regexp.MustCompile(`(?i)\bpin\s*[:=]\s*\d{4,8}\b`),                               // PINs
	regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[:=]\s*\S+`),                // password=...
}

const replacement = "[REDACTED]"

// Redact applies the built-in patterns, then each of extraPatterns.
func Redact(text string, extraPatterns []*regexp.Regexp) string {
	for _, re := range sensitivePatterns {
		text = re.ReplaceAllString(text, replacement)
	}
	for _, re := range extraPatterns {
		text = re.ReplaceAllString(text, replacement)
	}
	return text
}

// LoadPatterns reads a pattern file (one regular expression per line;
// blank lines and # comments are skipped).
// Returns nil (no error) if the file does not exist.
func LoadPatterns(path string) ([]*regexp.Regexp, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []*regexp.Regexp
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}
	return patterns, scanner.Err()
}
