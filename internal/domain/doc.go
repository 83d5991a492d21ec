// Package domain models nearby-water conditions built from USGS stream
// gauge data and batched fishing reports.
//
// # Data Sources
//
// Live discharge readings come from the USGS Water Services instantaneous
// values endpoint (https://waterservices.usgs.gov/nwis/iv/), queried by
// bounding box for parameter code 00060 (discharge, cubic feet per second)
// at active sites. Historical context comes from the daily statistics
// endpoint (https://waterservices.usgs.gov/nwis/stat/), which returns
// per-site percentile rows (P10/P25/P50/P75/P90) keyed by calendar day.
//
// # USGS Data Conventions
//
// Site names carry qualifier suffixes describing the gauge position:
//
//	"BRANDYWINE CREEK AT CHADDS FORD, PA"
//	"WHITE CLAY CREEK NEAR NEWARK, DE"
//	Qualifiers: NEAR, AT, ABV (above), BLW (below), plus a trailing
//	two-letter state code. [CleanSiteName] strips them for display.
//
// Discharge samples:
//
//	The IV response nests one time series per site; the most recent sample
//	in values[0].value is the current reading. Negative values are USGS
//	sentinels for equipment problems or ice and exclude the site.
//
// Daily statistics:
//
//	Statistic rows are matched by calendar month-day only — the year in a
//	row's dateTime is historical and ignored. Days with no exact-day row
//	are skipped rather than interpolated, matching upstream behavior.
//
// # Flow Grades
//
// A reading is classified into one of five ordered tiers. When the site's
// P50 for today's month-day is present and positive, percentile thresholds
// apply:
//
//	< P10 very low | < P25 low | < P75 normal | < P90 high | else blown out
//
// Without usable statistics, fixed absolute breakpoints (in cfs) stand in:
//
//	< 10 very low | < 50 low | < 500 normal | < 2000 high | else blown out
//
// The fixed breakpoints are a coarse estimate across very different river
// sizes; they exist so a statistics outage degrades grading instead of
// failing the whole fetch.
package domain
