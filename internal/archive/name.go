package archive

import (
	"path"
	"regexp"
	"strings"
)

// DefaultName is substituted when sanitizing leaves nothing usable.
const DefaultName = "document.pdf"

var (
	illegalChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Sanitize makes a raw document name safe for common filesystems: illegal
// characters become underscores, whitespace runs collapse to single spaces,
// and a blank result falls back to DefaultName.
func Sanitize(name string) string {
	name = illegalChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
	if name == "" {
		return DefaultName
	}
	return name
}

// BaseName derives the archive file name for a document: the signer emails
// joined with "+" prefix the original name when any were found, the result is
// sanitized, and a ".pdf" extension is appended when none survives.
func BaseName(emails []string, original string) string {
	name := original
	if len(emails) > 0 {
		name = strings.Join(emails, "+") + "_" + original
	}
	name = Sanitize(name)
	if path.Ext(name) == "" {
		name += ".pdf"
	}
	return name
}
