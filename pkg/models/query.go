package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// LookupQuery carries the caller-supplied identifiers for one outbound
// provider lookup. All fields are optional here; requiring at least one is
// the caller's concern. The title is rewritten once at construction: every
// whitespace run becomes a single "+", the token separator OMDb expects.
type LookupQuery struct {
	ImdbID *string `json:"imdb_id,omitempty"`
	Title  *string `json:"title,omitempty"`
	Year   *int    `json:"year,omitempty"`
}

// NewLookupQuery applies the title whitespace rule and leaves absent values
// absent. Empty strings count as absent.
func NewLookupQuery(imdbID, title string, year int) LookupQuery {
	var q LookupQuery
	if imdbID != "" {
		q.ImdbID = &imdbID
	}
	if title != "" {
		escaped := escapeTitle(title)
		q.Title = &escaped
	}
	if year != 0 {
		q.Year = &year
	}
	return q
}

// UnmarshalJSON accepts the inbound request body. The imdb id may arrive as
// a string or an integer; keys may be snake_case or camelCase. The title
// whitespace rule is applied here, at construction, and never again.
func (q *LookupQuery) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("lookup query payload: %w", err)
	}

	rec := resolveKeys(raw, lookupQueryAliases)

	var out LookupQuery
	var err error
	if out.ImdbID, err = coerceString("imdb_id", rec["imdb_id"]); err != nil {
		return err
	}
	if out.Title, err = coerceString("title", rec["title"]); err != nil {
		return err
	}
	if out.Year, err = coerceInt("year", rec["year"]); err != nil {
		return err
	}

	if out.Title != nil && *out.Title != "" {
		escaped := escapeTitle(*out.Title)
		out.Title = &escaped
	}

	*q = out
	return nil
}

var lookupQueryAliases = []fieldAliases{
	aliasesFor("imdb_id"),
	aliasesFor("title"),
	aliasesFor("year"),
}

// Empty reports whether no identifying field is present at all.
func (q LookupQuery) Empty() bool {
	return q.ImdbID == nil && q.Title == nil && q.Year == nil
}

// QueryString renders the OMDb request parameters (i, t, y). The title is
// already provider-escaped, so its "+" separators are emitted verbatim
// rather than percent-encoded.
func (q LookupQuery) QueryString() string {
	var parts []string
	if q.ImdbID != nil {
		parts = append(parts, "i="+url.QueryEscape(*q.ImdbID))
	}
	if q.Title != nil {
		escaped := url.QueryEscape(*q.Title)
		escaped = strings.ReplaceAll(escaped, "%2B", "+")
		parts = append(parts, "t="+escaped)
	}
	if q.Year != nil {
		parts = append(parts, "y="+strconv.Itoa(*q.Year))
	}
	return strings.Join(parts, "&")
}

func escapeTitle(title string) string {
	return whitespaceRun.ReplaceAllString(title, "+")
}
