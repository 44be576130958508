package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Audiovisual is the normalized, internal form of one successful OMDb
// lookup response.
//
// The provider's raw JSON is inconsistent: keys appear in camelCase,
// PascalCase or irregular spellings ("imdbID", "DVD"), missing data is the
// literal string "N/A" instead of null, and the numeric rating may use a
// comma as decimal separator. Decoding absorbs all of that; the decoded
// value always re-encodes with snake_case keys.
type Audiovisual struct {
	Title        *string       `json:"title,omitempty"`
	Year         *string       `json:"year,omitempty"` // textual, may be a range like "2014–2020"
	Rated        *string       `json:"rated,omitempty"`
	Released     *string       `json:"released,omitempty"`
	Runtime      *string       `json:"runtime,omitempty"`
	Genre        *string       `json:"genre,omitempty"`
	Director     *string       `json:"director,omitempty"`
	Writer       *string       `json:"writer,omitempty"`
	Actors       *string       `json:"actors,omitempty"`
	Plot         *string       `json:"plot,omitempty"`
	Language     *string       `json:"language,omitempty"`
	Country      *string       `json:"country,omitempty"`
	Awards       *string       `json:"awards,omitempty"`
	Poster       *string       `json:"poster,omitempty"`
	Ratings      []RatingEntry `json:"ratings,omitempty"`
	Metascore    *int          `json:"metascore,omitempty"`
	ImdbRating   *float64      `json:"imdb_rating,omitempty"`
	ImdbVotes    *string       `json:"imdb_votes,omitempty"`
	ImdbID       *string       `json:"imdb_id,omitempty"`
	Type         *string       `json:"type,omitempty"`
	DVD          *string       `json:"dvd,omitempty"`
	TotalSeasons *string       `json:"total_seasons,omitempty"`
	BoxOffice    *string       `json:"box_office,omitempty"`
	Production   *string       `json:"production,omitempty"`
	Website      *string       `json:"website,omitempty"`
	Response     bool          `json:"response"`
}

// RatingEntry is one named rating source inside an OMDb response, e.g.
// {"Source": "Rotten Tomatoes", "Value": "67%"}. The value stays exactly as
// the provider formatted it.
type RatingEntry struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// ShapeMismatchError reports a raw value that could not be coerced to its
// declared field type after sentinel and key normalization. A single
// mismatch aborts the whole decode; there are no partial records.
type ShapeMismatchError struct {
	Field string
	Value string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch on field %q: cannot decode %s", e.Field, e.Value)
}

const sentinel = "N/A"

// rawRecord is a provider payload between normalization stages.
type rawRecord map[string]json.RawMessage

// fieldAliases maps one canonical snake_case field name to the ordered raw
// key spellings accepted on decode. First match wins.
type fieldAliases struct {
	name    string
	accepts []string
}

// aliasesFor builds the alias list for a field: the canonical name itself,
// its camelCase and PascalCase forms, plus any irregular provider spelling.
func aliasesFor(name string, irregular ...string) fieldAliases {
	accepts := []string{name, toCamel(name), toPascal(name)}
	accepts = append(accepts, irregular...)

	seen := make(map[string]struct{}, len(accepts))
	uniq := accepts[:0]
	for _, a := range accepts {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	return fieldAliases{name: name, accepts: uniq}
}

var audiovisualAliases = []fieldAliases{
	aliasesFor("title"),
	aliasesFor("year"),
	aliasesFor("rated"),
	aliasesFor("released"),
	aliasesFor("runtime"),
	aliasesFor("genre"),
	aliasesFor("director"),
	aliasesFor("writer"),
	aliasesFor("actors"),
	aliasesFor("plot"),
	aliasesFor("language"),
	aliasesFor("country"),
	aliasesFor("awards"),
	aliasesFor("poster"),
	aliasesFor("ratings"),
	aliasesFor("metascore"),
	aliasesFor("imdb_rating"),
	aliasesFor("imdb_votes"),
	aliasesFor("imdb_id", "imdbID"),
	aliasesFor("type"),
	aliasesFor("dvd", "DVD"),
	aliasesFor("total_seasons"),
	aliasesFor("box_office"),
	aliasesFor("production"),
	aliasesFor("website"),
	aliasesFor("response"),
}

var ratingEntryAliases = []fieldAliases{
	aliasesFor("source"),
	aliasesFor("value"),
}

// stripSentinels replaces every value that is exactly the provider's "N/A"
// string with absence. Applies uniformly to all fields, before any coercion.
func stripSentinels(rec rawRecord) rawRecord {
	out := make(rawRecord, len(rec))
	for k, v := range rec {
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s == sentinel {
			continue
		}
		out[k] = v
	}
	return out
}

// resolveKeys rewrites raw provider spellings onto canonical field names
// using the alias table. Keys matching no declared field are dropped.
func resolveKeys(rec rawRecord, table []fieldAliases) rawRecord {
	out := make(rawRecord, len(table))
	for _, f := range table {
		for _, key := range f.accepts {
			if v, ok := rec[key]; ok {
				out[f.name] = v
				break
			}
		}
	}
	return out
}

// fixDecimalComma rewrites a comma decimal separator to a dot in the
// imdb_rating value, the one field where the provider leaks locale
// formatting. Values without a comma pass through untouched.
func fixDecimalComma(rec rawRecord) rawRecord {
	raw, ok := rec["imdb_rating"]
	if !ok {
		return rec
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || !strings.Contains(s, ",") {
		return rec
	}

	out := make(rawRecord, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	fixed, _ := json.Marshal(strings.ReplaceAll(s, ",", "."))
	out["imdb_rating"] = fixed
	return out
}

// UnmarshalJSON decodes one raw provider payload through the normalization
// pipeline: sentinel pass, key resolution, locale pass, then typed
// coercion. Any coercion failure aborts the decode with ShapeMismatchError.
func (a *Audiovisual) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("audiovisual payload: %w", err)
	}

	rec := stripSentinels(raw)
	rec = resolveKeys(rec, audiovisualAliases)
	rec = fixDecimalComma(rec)

	var out Audiovisual
	var err error

	strFields := []struct {
		name string
		dst  **string
	}{
		{"title", &out.Title},
		{"year", &out.Year},
		{"rated", &out.Rated},
		{"released", &out.Released},
		{"runtime", &out.Runtime},
		{"genre", &out.Genre},
		{"director", &out.Director},
		{"writer", &out.Writer},
		{"actors", &out.Actors},
		{"plot", &out.Plot},
		{"language", &out.Language},
		{"country", &out.Country},
		{"awards", &out.Awards},
		{"poster", &out.Poster},
		{"imdb_votes", &out.ImdbVotes},
		{"imdb_id", &out.ImdbID},
		{"type", &out.Type},
		{"dvd", &out.DVD},
		{"total_seasons", &out.TotalSeasons},
		{"box_office", &out.BoxOffice},
		{"production", &out.Production},
		{"website", &out.Website},
	}
	for _, f := range strFields {
		if *f.dst, err = coerceString(f.name, rec[f.name]); err != nil {
			return err
		}
	}

	if out.Metascore, err = coerceInt("metascore", rec["metascore"]); err != nil {
		return err
	}
	if out.ImdbRating, err = coerceFloat("imdb_rating", rec["imdb_rating"]); err != nil {
		return err
	}
	if out.Ratings, err = coerceRatings(rec["ratings"]); err != nil {
		return err
	}

	// The success flag is the only strictly required field.
	respRaw, ok := rec["response"]
	if !ok {
		return &ShapeMismatchError{Field: "response", Value: "<missing>"}
	}
	if out.Response, err = coerceBool("response", respRaw); err != nil {
		return err
	}

	*a = out
	return nil
}

// UnmarshalJSON decodes one rating entry with the same alias resolution as
// the parent shape. Both fields are mandatory; values stay free-form text.
func (r *RatingEntry) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("rating entry payload: %w", err)
	}

	rec := resolveKeys(raw, ratingEntryAliases)

	src, err := coerceString("source", rec["source"])
	if err != nil {
		return err
	}
	if src == nil {
		return &ShapeMismatchError{Field: "source", Value: "<missing>"}
	}
	val, err := coerceString("value", rec["value"])
	if err != nil {
		return err
	}
	if val == nil {
		return &ShapeMismatchError{Field: "value", Value: "<missing>"}
	}

	r.Source = *src
	r.Value = *val
	return nil
}

func coerceString(field string, raw json.RawMessage) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	// The provider occasionally sends numbers where text is expected
	// (e.g. a bare year). Keep the literal digits.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s = n.String()
		return &s, nil
	}
	return nil, &ShapeMismatchError{Field: field, Value: string(raw)}
}

func coerceInt(field string, raw json.RawMessage) (*int, error) {
	if raw == nil {
		return nil, nil
	}
	var i int
	if err := json.Unmarshal(raw, &i); err == nil {
		return &i, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return &i, nil
		}
	}
	return nil, &ShapeMismatchError{Field: field, Value: string(raw)}
}

func coerceFloat(field string, raw json.RawMessage) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f, nil
		}
	}
	return nil, &ShapeMismatchError{Field: field, Value: string(raw)}
}

func coerceBool(field string, raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		// OMDb reports the flag as "True" / "False".
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, &ShapeMismatchError{Field: field, Value: string(raw)}
}

func coerceRatings(raw json.RawMessage) ([]RatingEntry, error) {
	if raw == nil {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ShapeMismatchError{Field: "ratings", Value: string(raw)}
	}
	out := make([]RatingEntry, 0, len(items))
	for _, item := range items {
		var entry RatingEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func toPascal(snake string) string {
	parts := strings.Split(snake, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func toCamel(snake string) string {
	p := toPascal(snake)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}
