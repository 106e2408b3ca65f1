package util

import (
	"regexp"
	"strings"
)

// SanitizeForLog removes control characters and newlines from user content before logging.
func SanitizeForLog(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	re := regexp.MustCompile(`[\x00-\x1F\x7F]+`)
	s = re.ReplaceAllString(s, " ")
	return s
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9 ._-]+`)

// SanitizeFilename turns user-derived text (recipient names from CSV rows)
// into a name safe to use inside an archive or on disk. Path separators and
// control characters are stripped, not escaped.
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	s = strings.Trim(s, ". ")
	return s
}
