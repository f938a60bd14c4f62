package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength bounds node names so they stay usable as cache keys and
// Graphviz identifiers.
const MaxNameLength = 1024

// InversePrefix marks relation labels that are maintained automatically as
// the mirror of a forward relation.
const InversePrefix = "_inverse_"

// ValidateName validates a node name.
//
// The rules are:
//   - No empty names
//   - Valid UTF-8
//   - No control characters (including null bytes and newlines)
//   - Maximum length of MaxNameLength bytes
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "node name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "node name too long (max %d bytes)", MaxNameLength)
	}

	if !utf8.ValidString(name) {
		return New(ErrCodeInvalidName, "node name is not valid UTF-8")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidateLabel validates a forward relation label.
// Labels follow the name rules and must not carry the inverse prefix,
// which is reserved for automatically maintained mirror entries.
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidInput, "relation label cannot be empty")
	}
	if strings.HasPrefix(label, InversePrefix) {
		return New(ErrCodeInvalidInput, "relation label %q uses reserved prefix %q", label, InversePrefix)
	}
	if err := ValidateName(label); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid relation label")
	}
	return nil
}
