package domain

import "math"

// earthRadiusMiles matches the constant used by the upstream grading system
// so computed distances (and therefore rankings) agree with it exactly.
const earthRadiusMiles = 3959

// milesPerDegreeLat approximates one degree of latitude anywhere on Earth.
const milesPerDegreeLat = 69.0

// BBox is a geographic bounding box in decimal degrees.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// HaversineMiles returns the great-circle distance in miles between two
// points given in decimal degrees.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// BoundingBox returns a box extending radiusMiles in each direction from the
// given point, using the flat 69 miles/degree latitude approximation and its
// cosine-scaled longitude counterpart. Known limitation: the approximation
// degrades toward the poles; it is adequate for the mid-latitude gauges this
// engine queries.
func BoundingBox(lat, lon, radiusMiles float64) BBox {
	latPerMile := 1 / milesPerDegreeLat
	lonPerMile := 1 / (milesPerDegreeLat * math.Cos(lat*math.Pi/180))
	return BBox{
		West:  lon - radiusMiles*lonPerMile,
		South: lat - radiusMiles*latPerMile,
		East:  lon + radiusMiles*lonPerMile,
		North: lat + radiusMiles*latPerMile,
	}
}
