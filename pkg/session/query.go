package session

import (
	"strings"
	"unicode/utf8"
)

// QueryKind says how a query is wrapped before dispatch.
type QueryKind int

const (
	// QuerySearch is a free-text phrase.
	QuerySearch QueryKind = iota
	// QueryNavigate is a domain or URL.
	QueryNavigate
)

// Prompt prefixes.
const (
	SearchPrefix   = "Search for: "
	NavigatePrefix = "Navigate to and summarize/explain the content of: "
)

// TitleLength is the number of runes of the query kept as a tab title.
const TitleLength = 20

// LoadingTitle is shown while a request is in flight.
const LoadingTitle = "Connecting..."

// FailureMessage replaces a tab's content when dispatch fails.
const FailureMessage = "Network Request Failed. Please ensure your API key and connection are stable."

// Classify reports whether query looks like an address. Anything containing a
// dot or a scheme marker is treated as one.
func Classify(query string) QueryKind {
	if strings.Contains(query, ".") || strings.Contains(query, "://") {
		return QueryNavigate
	}
	return QuerySearch
}

// WrapPrompt turns a raw query into the prompt sent to the provider.
func WrapPrompt(query string) string {
	if Classify(query) == QueryNavigate {
		return NavigatePrefix + query
	}
	return SearchPrefix + query
}

// TitleFor returns the first TitleLength runes of query.
func TitleFor(query string) string {
	if utf8.RuneCountInString(query) <= TitleLength {
		return query
	}
	return string([]rune(query)[:TitleLength])
}
