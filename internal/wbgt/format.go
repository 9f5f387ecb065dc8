package wbgt

import (
	"fmt"
	"strconv"
	"strings"
)

// NoRecordsMessage is the single informational block emitted when a query
// produced no readings at all.
const NoRecordsMessage = "No records found."

// absentMarker renders a nullable upstream field that was null or missing.
const absentMarker = "None"

// FormatStation renders one station's readings as a single text block:
// a header line naming the station, then one line per reading in sequence
// order. Nullable fields render as the literal absence marker.
func FormatStation(station string, readings []Reading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Station: %s", station)
	for _, rd := range readings {
		fmt.Fprintf(&b, "\n  %s  WBGT: %s  HeatStress: %s",
			rd.Timestamp, formatValue(rd.WBGT), formatLabel(rd.HeatStress))
	}
	return b.String()
}

// FormatAll renders every station of a result as one block per station, in
// lexicographic station order. An empty result yields a single informational
// block rather than an empty list. Each block is one opaque message unit;
// there is no wrapping or pagination.
func FormatAll(result QueryResult) []string {
	if len(result) == 0 {
		return []string{NoRecordsMessage}
	}
	blocks := make([]string, 0, len(result))
	for _, station := range result.Stations() {
		blocks = append(blocks, FormatStation(station, result[station]))
	}
	return blocks
}

func formatValue(v *float64) string {
	if v == nil {
		return absentMarker
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func formatLabel(s *string) string {
	if s == nil {
		return absentMarker
	}
	return *s
}
