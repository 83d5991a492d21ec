package aggregator

import (
	"fmt"
	"strings"
	"time"

	"github.com/riverbend/localwaters/internal/domain"
)

// Tone is an abstract style token the view layer maps to its own styling.
type Tone string

const (
	ToneNeutral   Tone = "neutral"
	ToneHot       Tone = "hot"
	ToneExcellent Tone = "excellent"
	ToneGood      Tone = "good"

	ToneFresh Tone = "fresh"
	ToneAging Tone = "aging"
	ToneStale Tone = "stale"
	ToneMuted Tone = "muted"
)

// SectionState tells the view layer what to render for one widget section.
type SectionState string

const (
	SectionPrompt SectionState = "prompt" // no location; ask for one
	SectionReady  SectionState = "ready"
	SectionEmpty  SectionState = "empty" // loaded fine, nothing in range
	SectionError  SectionState = "error" // unable to load, offer retry
)

// FlowRow is one gauge line ready for ranked display.
type FlowRow struct {
	Name          string
	DistanceLabel string
	FlowLabel     string
	GradeLabel    string
	GradeStyle    string
}

// ReportRow is one fishing report ready for ranked display.
type ReportRow struct {
	Name       string
	URL        string
	Meta       string
	AgeLabel   string
	AgeTone    Tone
	Rating     string
	RatingTone Tone
	Conditions string
}

// Section pairs a render state with its rows.
type Section[T any] struct {
	State SectionState
	Rows  []T
}

// View is the complete render-ready contract consumed by the view layer.
type View struct {
	LocationName string
	Flow         Section[FlowRow]
	Reports      Section[ReportRow]
}

// BuildView converts a load result into the view contract.
func BuildView(r Result) View {
	v := View{
		Flow:    Section[FlowRow]{State: sectionState(r.Flow.State)},
		Reports: Section[ReportRow]{State: sectionState(r.Reports.State)},
	}
	if r.Location == nil {
		return v
	}
	v.LocationName = r.Location.Name

	for _, site := range r.Flow.Data {
		row := FlowRow{
			Name:          site.Name,
			DistanceLabel: fmt.Sprintf("%.1f mi", site.DistanceMiles),
			FlowLabel:     FormatFlow(site.Flow) + " " + site.FlowUnit,
		}
		if site.Grade != nil {
			row.GradeLabel = site.Grade.Label
			row.GradeStyle = site.Grade.Style
		}
		v.Flow.Rows = append(v.Flow.Rows, row)
	}

	for _, rep := range r.Reports.Data {
		meta := rep.State
		if rep.DistanceMiles > 0 {
			meta += fmt.Sprintf(" · %.0f mi", rep.DistanceMiles)
		}
		if rep.WaterTemp != "" {
			meta += " · " + rep.WaterTemp
		}
		v.Reports.Rows = append(v.Reports.Rows, ReportRow{
			Name:       rep.Name,
			URL:        rep.URL,
			Meta:       meta,
			AgeLabel:   RelativeTime(rep.UpdatedAt),
			AgeTone:    AgeTone(rep.UpdatedAt),
			Rating:     rep.Rating,
			RatingTone: RatingTone(rep.Rating),
			Conditions: rep.Conditions,
		})
	}
	return v
}

func sectionState(s State) SectionState {
	switch s {
	case StateOK:
		return SectionReady
	case StateEmpty:
		return SectionEmpty
	case StateFailed:
		return SectionError
	default:
		return SectionPrompt
	}
}

// FormatFlow renders a discharge value compactly: 12345 → "12.3k",
// 1234 → "1234", 123.45 → "123.5".
func FormatFlow(flow float64) string {
	switch {
	case flow >= 10000:
		return fmt.Sprintf("%.1fk", flow/1000)
	case flow >= 1000:
		return fmt.Sprintf("%.0f", flow)
	default:
		return fmt.Sprintf("%.1f", flow)
	}
}

// RelativeTime buckets an update time into a short age label. Returns ""
// for an unknown time.
func RelativeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	days := int(domain.Now().Sub(*t).Hours() / 24)
	switch {
	case days < 0:
		return "upcoming"
	case days == 0:
		return "today"
	case days == 1:
		return "1d ago"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	case days < 14:
		return "1w ago"
	case days < 30:
		return fmt.Sprintf("%dw ago", days/7)
	case days < 60:
		return "1mo ago"
	default:
		return fmt.Sprintf("%dmo ago", days/30)
	}
}

// AgeTone grades report freshness: fresh within two days, aging within a
// week, stale beyond.
func AgeTone(t *time.Time) Tone {
	if t == nil {
		return ToneMuted
	}
	days := int(domain.Now().Sub(*t).Hours() / 24)
	switch {
	case days <= 2:
		return ToneFresh
	case days <= 7:
		return ToneAging
	default:
		return ToneStale
	}
}

// RatingTone buckets free-text report ratings into display tones.
func RatingTone(rating string) Tone {
	lower := strings.ToLower(rating)
	switch {
	case strings.Contains(lower, "hot"):
		return ToneHot
	case strings.Contains(lower, "excellent"):
		return ToneExcellent
	case strings.Contains(lower, "good"):
		return ToneGood
	default:
		return ToneNeutral
	}
}
