package domain

// LocationSource records how a location was obtained.
type LocationSource string

const (
	SourceGPS    LocationSource = "gps"
	SourceZip    LocationSource = "zip"
	SourceManual LocationSource = "manual"
)

// Location is the visitor's active location. It is a value: constructed
// fully formed, persisted wholesale, never merged or partially updated.
type Location struct {
	Lat    float64        `json:"lat"`
	Lon    float64        `json:"lon"`
	Source LocationSource `json:"source"`
	Name   string         `json:"name"`
	Zip    string         `json:"zip,omitempty"`
}
