package wbgt

import "sort"

// Station identifies a weather-observation location as reported upstream.
// Any of the fields may be empty depending on the station.
type Station struct {
	ID         string
	Name       string
	TownCenter string
}

// Label resolves the display identity used for grouping and selection.
// Town-center label wins, then station name, then raw id.
func (s Station) Label() string {
	if s.TownCenter != "" {
		return s.TownCenter
	}
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// StationReading is one station's entry inside an upstream record.
// WBGT and HeatStress are nullable upstream and stay nullable here.
type StationReading struct {
	Station    Station
	WBGT       *float64
	HeatStress *string
}

// Record is one timestamped entry of the upstream time series, carrying
// the readings of every station observed at that instant.
type Record struct {
	Datetime string
	Readings []StationReading
}

// Reading is a single observation attributed to a resolved station label.
// The timestamp is kept verbatim as the upstream ISO-8601 string; it is
// parsed only for ordering, never reformatted.
type Reading struct {
	Timestamp  string   `json:"timestamp"`
	WBGT       *float64 `json:"wbgt"`
	HeatStress *string  `json:"heatStress"`
}

// QueryResult maps a station label to its time-ordered readings.
// Groups are never empty: a key exists only once a reading was appended.
type QueryResult map[string][]Reading

// Stations returns the station labels in lexicographic order.
func (r QueryResult) Stations() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
