// Package timeutil provides the local-zone day arithmetic used by session
// composition.
package timeutil

import "time"

// DefaultZoneName is used when no time zone is configured.
const DefaultZoneName = "Asia/Ho_Chi_Minh"

// LoadZone resolves a zone name, falling back to a fixed UTC+7 zone when the
// name is empty or unknown. Session day boundaries must never depend on the
// host's zone database being complete.
func LoadZone(name string) *time.Location {
	if name == "" {
		name = DefaultZoneName
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(DefaultZoneName, 7*60*60)
	}
	return loc
}

// DayBounds returns the [start, end) interval of the local day containing t.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// YesterdayBounds returns the bounds of the local day before the one
// containing t.
func YesterdayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	return DayBounds(t.In(loc).AddDate(0, 0, -1), loc)
}
