package insights

import (
	"fmt"

	"healthhub/internal/biomarker/models"
)

// Palette is the display color pairing for a status.
type Palette struct {
	Text       string `json:"text"`
	Background string `json:"background"`
}

type statusStyle struct {
	palette  Palette
	template string
}

var statusStyles = map[models.Status]statusStyle{
	models.StatusNormal: {
		palette:  Palette{Text: "text-green-700", Background: "bg-green-100"},
		template: "%s is within the normal range",
	},
	models.StatusElevated: {
		palette:  Palette{Text: "text-amber-700", Background: "bg-amber-100"},
		template: "%s is above the normal range",
	},
	models.StatusLow: {
		palette:  Palette{Text: "text-blue-700", Background: "bg-blue-100"},
		template: "%s is below the normal range",
	},
	models.StatusCritical: {
		palette:  Palette{Text: "text-red-700", Background: "bg-red-100"},
		template: "%s is at a critical level and needs attention",
	},
}

func styleFor(status models.Status) statusStyle {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return statusStyles[models.StatusNormal]
}

// Classify returns the color pairing for status. Unknown statuses render as normal.
func Classify(status models.Status) Palette {
	return styleFor(status).palette
}

// DescribeStatus returns the status sentence for the named biomarker.
// Unknown statuses render as normal.
func DescribeStatus(status models.Status, name string) string {
	return fmt.Sprintf(styleFor(status).template, name)
}

// LegendEntry is one row of the status legend.
type LegendEntry struct {
	Status  models.Status `json:"status"`
	Palette Palette       `json:"palette"`
}

// Legend returns the palette of every status in display order.
func Legend() []LegendEntry {
	statuses := models.Statuses()
	out := make([]LegendEntry, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, LegendEntry{Status: s, Palette: Classify(s)})
	}
	return out
}
