package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates an input or output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// whereClauseRegex matches the subset of SQL accepted as a visit filter:
// identifiers, numbers, quoted literals, comparison and boolean operators.
var whereClauseRegex = regexp.MustCompile(`^[A-Za-z0-9_ .'<>=!()+\-*/,]*$`)

// forbiddenSQL lists tokens that must never appear in a visit filter.
var forbiddenSQL = []string{";", "--", "/*", "*/"}

// ValidateWhereClause validates a user-supplied SQL filter for opsim visit queries.
// It rejects statement separators, comments and characters outside a conservative set.
// An empty clause is valid and means "all visits".
func ValidateWhereClause(where string) error {
	if where == "" {
		return nil
	}
	if len(where) > 1024 {
		return New(ErrCodeInvalidInput, "filter too long (max 1024 characters)")
	}
	for _, tok := range forbiddenSQL {
		if strings.Contains(where, tok) {
			return New(ErrCodeInvalidInput, "filter contains forbidden token %q", tok)
		}
	}
	if !whereClauseRegex.MatchString(where) {
		return New(ErrCodeInvalidInput, "filter contains invalid characters: %q", where)
	}
	return nil
}
