package models

// AudiovisualRecord is a decoded provider response as stored in the
// catalogue: the record itself plus the uuid it is indexed under. The id is
// ours, not the provider's.
type AudiovisualRecord struct {
	ID string `json:"id"`
	Audiovisual
}
