package events

import "time"

const (
	TypeAudiovisualAdded   = "audiovisual.added"
	TypeAudiovisualRemoved = "audiovisual.removed"
	TypeReviewAdded        = "review.added"
)

type CatalogueEvent struct {
	Type          string    `json:"type"`
	AudiovisualID string    `json:"audiovisual_id"`
	Title         string    `json:"title,omitempty"`
	At            time.Time `json:"at"`
}
