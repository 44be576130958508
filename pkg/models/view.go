package models

import (
	"fmt"

	"github.com/google/uuid"
)

// AudiovisualView is the public projection of one stored catalogue entry:
// a subset of the decoded record plus the storage id and an aggregate
// rating, both supplied by the caller rather than copied from the provider.
//
// Example payload:
//
//	{
//	  "id": "64e259a8-8512-415f-8f52-8b3d9103f6c6",
//	  "title": "How to Get Away with Murder",
//	  "year": "2014–2020",
//	  "runtime": "43 min",
//	  "genre": "Crime, Drama, Mystery",
//	  "director": null,
//	  "actors": "Viola Davis, Billy Brown, Jack Falahee",
//	  "plot": "A group of ambitious law students ...",
//	  "rating": 3.0,
//	  "type": "series"
//	}
type AudiovisualView struct {
	ID       uuid.UUID `json:"id"`
	Title    *string   `json:"title"`
	Year     *string   `json:"year"`
	Runtime  *string   `json:"runtime"`
	Genre    *string   `json:"genre"`
	Director *string   `json:"director"`
	Actors   *string   `json:"actors"`
	Plot     *string   `json:"plot"`
	Rating   *float64  `json:"rating"`
	Type     string    `json:"type"`
}

// UnrecognizedRatingError reports a rating input that is neither absent, a
// plain number, nor the known aggregate type. It is surfaced instead of
// coerced so a wrong number is never silently reported.
type UnrecognizedRatingError struct {
	Value any
}

func (e *UnrecognizedRatingError) Error() string {
	return fmt.Sprintf("unrecognized rating input of type %T", e.Value)
}

type ratingKind int

const (
	ratingAbsent ratingKind = iota
	ratingNumber
	ratingAggregate
	ratingOpaque
)

// RatingInput is the tagged union accepted as the rating of a view: absent,
// a plain number, or a Rating aggregate from which the number is extracted.
// Anything else is carried through as opaque and rejected at extraction.
type RatingInput struct {
	kind      ratingKind
	number    float64
	aggregate *Rating
	opaque    any
}

func NoRating() RatingInput {
	return RatingInput{kind: ratingAbsent}
}

func RatingOf(v float64) RatingInput {
	return RatingInput{kind: ratingNumber, number: v}
}

func RatingFromAggregate(r *Rating) RatingInput {
	if r == nil {
		return NoRating()
	}
	return RatingInput{kind: ratingAggregate, aggregate: r}
}

// RatingInputFrom tags an arbitrary value. Useful at boundaries where the
// rating arrives untyped; unknown types stay opaque rather than becoming a
// number.
func RatingInputFrom(v any) RatingInput {
	switch r := v.(type) {
	case nil:
		return NoRating()
	case float64:
		return RatingOf(r)
	case *Rating:
		return RatingFromAggregate(r)
	case Rating:
		return RatingFromAggregate(&r)
	default:
		return RatingInput{kind: ratingOpaque, opaque: v}
	}
}

// Extract resolves the union to a plain number or absence.
func (in RatingInput) Extract() (*float64, error) {
	switch in.kind {
	case ratingAbsent:
		return nil, nil
	case ratingNumber:
		v := in.number
		return &v, nil
	case ratingAggregate:
		v := in.aggregate.Rating
		return &v, nil
	default:
		return nil, &UnrecognizedRatingError{Value: in.opaque}
	}
}

// NewAudiovisualView projects one decoded record. The id comes from storage,
// never from the provider; the content type is mandatory in the projection.
func NewAudiovisualView(id uuid.UUID, av *Audiovisual, rating RatingInput) (*AudiovisualView, error) {
	if av.Type == nil {
		return nil, &ShapeMismatchError{Field: "type", Value: "<missing>"}
	}

	num, err := rating.Extract()
	if err != nil {
		return nil, err
	}

	return &AudiovisualView{
		ID:       id,
		Title:    av.Title,
		Year:     av.Year,
		Runtime:  av.Runtime,
		Genre:    av.Genre,
		Director: av.Director,
		Actors:   av.Actors,
		Plot:     av.Plot,
		Rating:   num,
		Type:     *av.Type,
	}, nil
}

// RemovedMessage reports that a movie or series was removed.
type RemovedMessage struct {
	Message string `json:"message"`
}

// ErrorMessage reports a request that did not succeed.
type ErrorMessage struct {
	Message string `json:"message"`
}
