package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	fallbackStem       = "file"
	maxStemLen         = 8
	fingerprintLen     = 8
	wideFingerprintLen = 16
)

// Fingerprint returns the hex SHA-256 digest of the content. Stored names
// embed a short prefix of it, so same-content uploads land on the same name
// within a day.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// GenerateFilename derives the stored name for a client-supplied name and
// content, stamped with the current date.
func GenerateFilename(originalName string, content []byte) string {
	return Compose(originalName, Fingerprint(content)[:fingerprintLen], time.Now())
}

// Compose builds a stored filename of the form {MMDD}_{fingerprint}_{stem}{ext}.
// The stem keeps at most eight ASCII letters, digits or -_. characters from
// the client name; an empty result falls back to "file". The output never
// contains path separators or a leading dot.
func Compose(originalName, fingerprint string, now time.Time) string {
	return now.Format("0102") + "_" + fingerprint + "_" + sanitizeStem(stem(originalName)) + Ext(originalName)
}

// Ext returns the lower-cased dotted extension of a name, or "" when there is
// none. A bare leading-dot name like ".bashrc" and a trailing dot both count
// as having no extension.
func Ext(name string) string {
	base := baseName(name)
	i := strings.LastIndex(base, ".")
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i:])
}

// stem returns the final path component without its extension.
func stem(name string) string {
	base := baseName(name)
	i := strings.LastIndex(base, ".")
	if i <= 0 || i == len(base)-1 {
		return base
	}
	return base[:i]
}

// baseName returns the last path segment, treating both slash kinds as
// separators so Windows-style client names cannot smuggle directories.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

func sanitizeStem(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() >= maxStemLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallbackStem
	}
	return b.String()
}
