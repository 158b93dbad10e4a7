// Package storedname generates collision-resistant names for stored blobs.
package storedname

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxExtLength bounds the extension carried over from the display name.
const maxExtLength = 10

// Generator defines the interface for stored-name generation strategies.
type Generator interface {
	// Generate creates a unique stored name, carrying over a sanitized
	// extension from the display name so stored files keep a usable type
	// hint.
	Generate(displayName string) string
}

// RandomGenerator derives names from a random 128-bit token, so uniqueness
// does not depend on the suggested name or on wall-clock time.
type RandomGenerator struct{}

// New creates a RandomGenerator.
func New() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) Generate(displayName string) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return token + sanitizeExt(filepath.Ext(displayName))
}

// sanitizeExt returns a lowercase extension safe to embed in a blob name,
// or "" when the input contains anything but letters and digits.
func sanitizeExt(ext string) string {
	if ext == "" || ext == "." || len(ext) > maxExtLength {
		return ""
	}
	ext = strings.ToLower(ext)
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
