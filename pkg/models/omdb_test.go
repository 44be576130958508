package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestAudiovisualDecodeSentinel(t *testing.T) {
	raw := `{
		"Title": "N/A",
		"Year": "N/A",
		"Awards": "N/A",
		"Metascore": "N/A",
		"imdbRating": "N/A",
		"DVD": "N/A",
		"Response": "True"
	}`

	var av Audiovisual
	if err := json.Unmarshal([]byte(raw), &av); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if av.Title != nil {
		t.Errorf("Title: want absent, got %q", *av.Title)
	}
	if av.Year != nil {
		t.Errorf("Year: want absent, got %q", *av.Year)
	}
	if av.Awards != nil {
		t.Errorf("Awards: want absent, got %q", *av.Awards)
	}
	if av.Metascore != nil {
		t.Errorf("Metascore: want absent, got %d", *av.Metascore)
	}
	if av.ImdbRating != nil {
		t.Errorf("ImdbRating: want absent, got %v", *av.ImdbRating)
	}
	if av.DVD != nil {
		t.Errorf("DVD: want absent, got %q", *av.DVD)
	}
	if !av.Response {
		t.Error("Response: want true")
	}
}

func TestAudiovisualDecodeRatingLocale(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *float64
	}{
		{"comma separator", `{"imdbRating": "7,1", "Response": "True"}`, floatp(7.1)},
		{"dot separator", `{"imdbRating": "7.1", "Response": "True"}`, floatp(7.1)},
		{"plain number", `{"imdbRating": 7.1, "Response": "True"}`, floatp(7.1)},
		{"sentinel", `{"imdbRating": "N/A", "Response": "True"}`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var av Audiovisual
			if err := json.Unmarshal([]byte(tc.raw), &av); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			switch {
			case tc.want == nil && av.ImdbRating != nil:
				t.Errorf("want absent, got %v", *av.ImdbRating)
			case tc.want != nil && av.ImdbRating == nil:
				t.Errorf("want %v, got absent", *tc.want)
			case tc.want != nil && *av.ImdbRating != *tc.want:
				t.Errorf("want %v, got %v", *tc.want, *av.ImdbRating)
			}
		})
	}
}

func TestAudiovisualDecodeKeySpellings(t *testing.T) {
	spellings := []string{
		`{"imdbID": "tt0944947", "Response": "True"}`,
		`{"imdbId": "tt0944947", "Response": "True"}`,
		`{"ImdbId": "tt0944947", "Response": "True"}`,
		`{"imdb_id": "tt0944947", "Response": "True"}`,
	}

	for _, raw := range spellings {
		var av Audiovisual
		if err := json.Unmarshal([]byte(raw), &av); err != nil {
			t.Fatalf("decode %s failed: %v", raw, err)
		}
		if av.ImdbID == nil || *av.ImdbID != "tt0944947" {
			t.Errorf("decode %s: want imdb id tt0944947, got %v", raw, av.ImdbID)
		}
	}

	var av Audiovisual
	if err := json.Unmarshal([]byte(`{"DVD": "21 Feb 2014", "totalSeasons": "6", "Response": "True"}`), &av); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if av.DVD == nil || *av.DVD != "21 Feb 2014" {
		t.Errorf("DVD: got %v", av.DVD)
	}
	if av.TotalSeasons == nil || *av.TotalSeasons != "6" {
		t.Errorf("TotalSeasons: got %v", av.TotalSeasons)
	}
}

func TestAudiovisualDecodeEndToEnd(t *testing.T) {
	raw := `{"Title":"Fargo","imdbRating":"8,9","imdbID":"tt0944947","Response":"true"}`

	var av Audiovisual
	if err := json.Unmarshal([]byte(raw), &av); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if av.Title == nil || *av.Title != "Fargo" {
		t.Errorf("Title: got %v", av.Title)
	}
	if av.ImdbRating == nil || *av.ImdbRating != 8.9 {
		t.Errorf("ImdbRating: got %v", av.ImdbRating)
	}
	if av.ImdbID == nil || *av.ImdbID != "tt0944947" {
		t.Errorf("ImdbID: got %v", av.ImdbID)
	}
	if !av.Response {
		t.Error("Response: want true")
	}
}

func TestAudiovisualDecodeFull(t *testing.T) {
	raw := `{
		"Title": "How to Get Away with Murder",
		"Year": "2014–2020",
		"Rated": "TV-14",
		"Runtime": "43 min",
		"Genre": "Crime, Drama, Mystery",
		"Actors": "Viola Davis, Billy Brown, Jack Falahee",
		"Metascore": "68",
		"imdbRating": "8.1",
		"imdbVotes": "160,000",
		"imdbID": "tt3205802",
		"Type": "series",
		"totalSeasons": "6",
		"Ratings": [
			{"Source": "Internet Movie Database", "Value": "8.1/10"},
			{"Source": "Rotten Tomatoes", "Value": "67%"}
		],
		"Response": "True"
	}`

	var av Audiovisual
	if err := json.Unmarshal([]byte(raw), &av); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if av.Year == nil || *av.Year != "2014–2020" {
		t.Errorf("Year: got %v", av.Year)
	}
	if av.Metascore == nil || *av.Metascore != 68 {
		t.Errorf("Metascore: got %v", av.Metascore)
	}
	// imdbVotes is text, the comma is a thousands separator there, not a
	// decimal one.
	if av.ImdbVotes == nil || *av.ImdbVotes != "160,000" {
		t.Errorf("ImdbVotes: got %v", av.ImdbVotes)
	}
	if len(av.Ratings) != 2 {
		t.Fatalf("Ratings: want 2 entries, got %d", len(av.Ratings))
	}
	if av.Ratings[1].Source != "Rotten Tomatoes" || av.Ratings[1].Value != "67%" {
		t.Errorf("Ratings[1]: got %+v", av.Ratings[1])
	}
}

func TestAudiovisualDecodeMismatch(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"metascore not numeric", `{"Metascore": "sixty", "Response": "True"}`, "metascore"},
		{"rating not numeric", `{"imdbRating": "high", "Response": "True"}`, "imdb_rating"},
		{"response missing", `{"Title": "Fargo"}`, "response"},
		{"response not boolean", `{"Response": "maybe"}`, "response"},
		{"ratings not a list", `{"Ratings": "none", "Response": "True"}`, "ratings"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var av Audiovisual
			err := json.Unmarshal([]byte(tc.raw), &av)
			var mismatch *ShapeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("want ShapeMismatchError, got %v", err)
			}
			if mismatch.Field != tc.field {
				t.Errorf("field: want %q, got %q", tc.field, mismatch.Field)
			}
		})
	}
}

func TestAudiovisualEncodeStable(t *testing.T) {
	raw := `{"Title":"Fargo","Year":"2014–2020","imdbRating":"8,9","imdbID":"tt0944947","DVD":"N/A","Type":"series","Response":"True"}`

	var av Audiovisual
	if err := json.Unmarshal([]byte(raw), &av); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	first, err := json.Marshal(av)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if bytes.Contains(first, []byte("Title")) || bytes.Contains(first, []byte("imdbID")) {
		t.Errorf("encoded form leaked input casing: %s", first)
	}
	if !bytes.Contains(first, []byte(`"imdb_id":"tt0944947"`)) {
		t.Errorf("want snake_case imdb_id in output, got %s", first)
	}
	if !bytes.Contains(first, []byte(`"imdb_rating":8.9`)) {
		t.Errorf("want normalized rating in output, got %s", first)
	}

	// encode ∘ decode ∘ encode = encode ∘ decode
	var again Audiovisual
	if err := json.Unmarshal(first, &again); err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	second, err := json.Marshal(again)
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("re-encoding not stable:\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestRatingEntryDecode(t *testing.T) {
	t.Run("pascal keys", func(t *testing.T) {
		var entry RatingEntry
		if err := json.Unmarshal([]byte(`{"Source": "Metacritic", "Value": "68/100"}`), &entry); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if entry.Source != "Metacritic" || entry.Value != "68/100" {
			t.Errorf("got %+v", entry)
		}
	})

	t.Run("snake keys", func(t *testing.T) {
		var entry RatingEntry
		if err := json.Unmarshal([]byte(`{"source": "Metacritic", "value": "68/100"}`), &entry); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if entry.Source != "Metacritic" {
			t.Errorf("got %+v", entry)
		}
	})

	t.Run("missing value", func(t *testing.T) {
		var entry RatingEntry
		err := json.Unmarshal([]byte(`{"Source": "Metacritic"}`), &entry)
		var mismatch *ShapeMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("want ShapeMismatchError, got %v", err)
		}
		if mismatch.Field != "value" {
			t.Errorf("field: want value, got %q", mismatch.Field)
		}
	})
}

func floatp(v float64) *float64 { return &v }
