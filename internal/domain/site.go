package domain

import "time"

// GradeTier is one of five ordered flow-condition tiers.
type GradeTier int

const (
	TierVeryLow GradeTier = iota
	TierLow
	TierNormal
	TierHigh
	TierBlownOut
)

// Grade pairs a tier with its display label and style token.
type Grade struct {
	Tier  GradeTier `json:"tier"`
	Label string    `json:"label"`
	Style string    `json:"style"`
}

var (
	GradeVeryLow  = Grade{TierVeryLow, "Very Low", "flow-grade-very-low"}
	GradeLow      = Grade{TierLow, "Low", "flow-grade-low"}
	GradeNormal   = Grade{TierNormal, "Normal", "flow-grade-normal"}
	GradeHigh     = Grade{TierHigh, "High", "flow-grade-high"}
	GradeBlownOut = Grade{TierBlownOut, "Blown Out", "flow-grade-blown-out"}
)

// Site is a USGS monitoring site with its most recent discharge reading.
// Grade is nil until the grading pass runs.
type Site struct {
	SiteID        string     `json:"siteId"`
	Name          string     `json:"name"`
	Lat           float64    `json:"lat"`
	Lon           float64    `json:"lon"`
	DistanceMiles float64    `json:"distanceMiles"`
	Flow          float64    `json:"flow"`
	FlowUnit      string     `json:"flowUnit"`
	ObservedAt    *time.Time `json:"observedAt,omitempty"`
	Grade         *Grade     `json:"grade,omitempty"`
}

// DailyPercentiles holds a site's historical percentile thresholds for one
// calendar day (month+day across all years of record).
type DailyPercentiles struct {
	P10 float64
	P25 float64
	P50 float64
	P75 float64
	P90 float64
}

// Usable reports whether the percentile set can grade a reading. A missing
// or zero P50 means the day has no meaningful record.
func (p DailyPercentiles) Usable() bool {
	return p.P50 > 0
}

// GradeFromPercentiles classifies a flow reading against a site's historical
// percentile thresholds for today's calendar day.
func GradeFromPercentiles(flow float64, p DailyPercentiles) Grade {
	switch {
	case flow < p.P10:
		return GradeVeryLow
	case flow < p.P25:
		return GradeLow
	case flow < p.P75:
		return GradeNormal
	case flow < p.P90:
		return GradeHigh
	default:
		return GradeBlownOut
	}
}

// EstimateGrade classifies a flow reading against fixed absolute breakpoints
// (cfs). Used when historical statistics are missing or the statistics call
// failed.
func EstimateGrade(flow float64) Grade {
	switch {
	case flow < 10:
		return GradeVeryLow
	case flow < 50:
		return GradeLow
	case flow < 500:
		return GradeNormal
	case flow < 2000:
		return GradeHigh
	default:
		return GradeBlownOut
	}
}
