package domain

import "time"

// Report is one entry from the batched fishing-report feed. DistanceMiles
// is a view of feed × current location: it is recomputed on every read and
// never stored with the cached feed.
type Report struct {
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	State         string     `json:"state"`
	WaterTemp     string     `json:"water_temp,omitempty"`
	Rating        string     `json:"rating,omitempty"`
	Conditions    string     `json:"conditions,omitempty"`
	UpdatedAt     *time.Time `json:"updated,omitempty"`
	Lat           float64    `json:"lat"`
	Lon           float64    `json:"lon"`
	DistanceMiles float64    `json:"distanceMiles"`
}
