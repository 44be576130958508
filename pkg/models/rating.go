package models

// Rating is the aggregate rating computed outside the decode/encode core,
// currently the average of user reviews for one catalogue entry. The view
// projection only relies on the numeric Rating attribute.
type Rating struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}
