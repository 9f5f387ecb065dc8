package wbgt

import (
	"sort"
	"time"
)

// GroupByStation reshapes the upstream record list into a per-station view.
// Input order is preserved while appending, then each group is sorted
// ascending by parsed timestamp with a stable sort, so readings that share a
// timestamp keep their original relative order.
func GroupByStation(records []Record) QueryResult {
	result := QueryResult{}

	for _, rec := range records {
		for _, rd := range rec.Readings {
			label := rd.Station.Label()
			result[label] = append(result[label], Reading{
				Timestamp:  rec.Datetime,
				WBGT:       rd.WBGT,
				HeatStress: rd.HeatStress,
			})
		}
	}

	for _, readings := range result {
		sort.SliceStable(readings, func(i, j int) bool {
			ti, iok := ParseTimestamp(readings[i].Timestamp)
			tj, jok := ParseTimestamp(readings[j].Timestamp)
			switch {
			case iok && jok:
				return ti.Before(tj)
			case iok:
				// Unparseable timestamps sort after parseable ones.
				return true
			default:
				return false
			}
		})
	}

	return result
}

// ParseTimestamp parses an upstream ISO-8601 timestamp for ordering.
// A literal "Z" suffix is the UTC offset +00:00, which RFC 3339 already
// handles; bare local timestamps without an offset are accepted too.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
