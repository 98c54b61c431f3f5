package core

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIdentifierPattern accepts a domain-qualified account (CORP\jdoe)
// or a mail-style address (jdoe@corp.example).
const DefaultIdentifierPattern = `^(?:[A-Za-z0-9][A-Za-z0-9._-]*\\[A-Za-z0-9][A-Za-z0-9._-]*|[\w.-]+@(?:[\w-]+\.)+[\w-]{2,})$`

// IdentifierSeparator is the canonical separator of multi-value identifier fields.
const IdentifierSeparator = ", "

var identifierSplit = regexp.MustCompile(`[,;]`)

// IdentifierValidator checks person identifiers against a pattern.
type IdentifierValidator struct {
	pattern *regexp.Regexp
}

// NewIdentifierValidator compiles pattern. An empty pattern selects
// DefaultIdentifierPattern.
func NewIdentifierValidator(pattern string) (*IdentifierValidator, error) {
	if pattern == "" {
		pattern = DefaultIdentifierPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("identifier pattern: %w", err)
	}
	return &IdentifierValidator{pattern: re}, nil
}

// Valid reports whether s is a single well-formed identifier. Empty input is
// valid: absence is checked by the required-field rules.
func (v *IdentifierValidator) Valid(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || v.pattern.MatchString(s)
}

// AllValid reports whether every token of a multi-value list is valid.
func (v *IdentifierValidator) AllValid(tokens []string) bool {
	for _, t := range tokens {
		if !v.Valid(t) {
			return false
		}
	}
	return true
}

// SplitIdentifiers splits a multi-value field on commas and semicolons,
// dropping empty tokens.
func SplitIdentifiers(s string) []string {
	var out []string
	for _, p := range identifierSplit.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinIdentifiers renders tokens with the canonical separator.
func JoinIdentifiers(tokens []string) string {
	return strings.Join(tokens, IdentifierSeparator)
}
