package insights

import (
	"cmp"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"healthhub/internal/biomarker/models"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortRecent SortKey = "recent"
	SortName   SortKey = "name"
	SortStatus SortKey = "status"
)

func (k SortKey) IsValid() bool {
	return k == SortRecent || k == SortName || k == SortStatus
}

// severityRank orders statuses for SortStatus. The ordering is editorial and
// kept as the product defined it.
var severityRank = map[models.Status]int{
	models.StatusCritical: 3,
	models.StatusElevated: 2,
	models.StatusLow:      1,
	models.StatusNormal:   0,
}

// Sort returns a new slice ordered by key. All orderings are stable. Unknown
// keys return the input order.
//
//   - SortRecent: timestamp descending; unparseable timestamps sort last
//   - SortName: locale-aware ascending
//   - SortStatus: severity descending (critical, elevated, low, normal)
func Sort(records []models.Record, key SortKey) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)

	switch key {
	case SortRecent:
		sortRecent(out)
	case SortName:
		sortName(out)
	case SortStatus:
		slices.SortStableFunc(out, func(a, b models.Record) int {
			return cmp.Compare(severityRank[b.Status], severityRank[a.Status])
		})
	}
	return out
}

type timedRecord struct {
	record models.Record
	at     time.Time
	ok     bool
}

func sortRecent(records []models.Record) {
	timed := make([]timedRecord, len(records))
	for i, r := range records {
		at, ok := parseTimestamp(r.Timestamp)
		timed[i] = timedRecord{record: r, at: at, ok: ok}
	}
	slices.SortStableFunc(timed, func(a, b timedRecord) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})
	for i := range timed {
		records[i] = timed[i].record
	}
}

func sortName(records []models.Record) {
	// Collators keep internal buffers, so each call gets its own.
	c := collate.New(language.English)
	slices.SortStableFunc(records, func(a, b models.Record) int {
		return c.CompareString(a.Name, b.Name)
	})
}
