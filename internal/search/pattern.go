// Package search turns the text typed into a column's search field into a
// matcher and combines the matchers of all columns into a record filter.
//
// Query syntax:
//
//	XYZ      values containing a match for the regular expression XYZ
//	a b, a*b "a", then anything, then "b" (runs of spaces and * are wildcards)
//	-XYZ     values NOT matching XYZ (! works as well)
//	-*       only empty values
//	*        everything
//
// Matching ignores case unless Options.CaseSensitive is set; apart from
// that the text is used as a regular expression unchanged.
package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

// wildcardRun matches one or more wildcard characters.
var wildcardRun = regexp.MustCompile(`[ *]+`)

type Options struct {
	CaseSensitive bool
}

type matchKind int

const (
	matchAll matchKind = iota
	matchEmpty
	matchRegex
)

// Matcher is the compiled form of one raw search string. It is immutable.
type Matcher struct {
	Raw      string
	Inverted bool
	kind     matchKind
	re       *regexp.Regexp
}

// PatternError reports a search string whose normalized form is not a valid
// regular expression.
type PatternError struct {
	Raw    string
	Source string
	Err    error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid search pattern %q: %v", e.Raw, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Compile builds a Matcher from a raw search string.
func Compile(raw string, opts Options) (Matcher, error) {
	m := Matcher{Raw: raw}

	pattern := strings.TrimSpace(raw)
	if pattern == "" {
		return m, nil
	}

	pattern, m.Inverted = stripInversion(pattern)

	if isWildcardOnly(pattern) {
		if m.Inverted {
			m.kind = matchEmpty
		}
		return m, nil
	}

	source := expandWildcards(pattern)
	if !opts.CaseSensitive {
		source = "(?i)" + source
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return Matcher{}, &PatternError{Raw: raw, Source: source, Err: err}
	}
	m.kind = matchRegex
	m.re = re
	return m, nil
}

// stripInversion removes a leading - or ! and reports whether it was there.
func stripInversion(pattern string) (string, bool) {
	if strings.HasPrefix(pattern, "-") || strings.HasPrefix(pattern, "!") {
		return pattern[1:], true
	}
	return pattern, false
}

// isWildcardOnly reports whether pattern consists of nothing but spaces and
// asterisks. The empty string counts.
func isWildcardOnly(pattern string) bool {
	return strings.Trim(pattern, " *") == ""
}

// expandWildcards replaces every run of spaces and asterisks with .*
func expandWildcards(pattern string) string {
	return wildcardRun.ReplaceAllLiteralString(pattern, ".*")
}

// MatchAll reports whether the matcher accepts every value.
func (m Matcher) MatchAll() bool {
	return m.kind == matchAll
}

// Match tests a single cell value.
func (m Matcher) Match(v model.Value) bool {
	switch m.kind {
	case matchEmpty:
		return v.IsEmpty()
	case matchRegex:
		found := m.re.MatchString(v.String())
		if m.Inverted {
			return !found
		}
		return found
	}
	return true
}

// String returns the effective regular expression, for diagnostics.
func (m Matcher) String() string {
	switch m.kind {
	case matchEmpty:
		return "<empty>"
	case matchRegex:
		if m.Inverted {
			return "NOT " + m.re.String()
		}
		return m.re.String()
	}
	return "<any>"
}
