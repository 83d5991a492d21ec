package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/riverbend/localwaters/internal/aggregator"
)

// renderText writes a plain-text rendition of the view, one section per
// widget panel.
func renderText(w io.Writer, view aggregator.View) error {
	var b strings.Builder

	if view.LocationName != "" {
		fmt.Fprintf(&b, "Local Waters near %s\n\n", view.LocationName)
	}

	b.WriteString("Stream Flow\n")
	switch view.Flow.State {
	case aggregator.SectionPrompt:
		b.WriteString("  set a location to see nearby gauges (try -zip)\n")
	case aggregator.SectionEmpty:
		b.WriteString("  no active gauges in range\n")
	case aggregator.SectionError:
		b.WriteString("  gauge data unavailable right now\n")
	default:
		for _, row := range view.Flow.Rows {
			fmt.Fprintf(&b, "  %-30s %8s  %s", row.Name, row.FlowLabel, row.DistanceLabel)
			if row.GradeLabel != "" {
				fmt.Fprintf(&b, "  [%s]", row.GradeLabel)
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString("\nFishing Reports\n")
	switch view.Reports.State {
	case aggregator.SectionPrompt:
		b.WriteString("  set a location to see nearby reports\n")
	case aggregator.SectionEmpty:
		b.WriteString("  no recent reports in range\n")
	case aggregator.SectionError:
		b.WriteString("  reports unavailable right now\n")
	default:
		for _, row := range view.Reports.Rows {
			fmt.Fprintf(&b, "  %s (%s)", row.Name, row.Meta)
			if row.Rating != "" {
				fmt.Fprintf(&b, " - %s", row.Rating)
			}
			if row.AgeLabel != "" {
				fmt.Fprintf(&b, ", %s", row.AgeLabel)
			}
			b.WriteByte('\n')
			if row.Conditions != "" {
				fmt.Fprintf(&b, "    %s\n", row.Conditions)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
