// Package week maps naive timestamps to the Monday that starts their week.
package week

import "time"

// Layout formats a week start as a calendar date.
const Layout = time.DateOnly

// Bucket returns midnight of the Monday of the Monday-to-Sunday week that
// contains t, in t's location. Bucket is idempotent.
func Bucket(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	sinceMonday := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -sinceMonday)
}

// Year returns the calendar year of the week start, which decides the
// week's membership in a target year.
func Year(t time.Time) int {
	return Bucket(t).Year()
}

// Format renders the week start containing t as YYYY-MM-DD.
func Format(t time.Time) string {
	return Bucket(t).Format(Layout)
}
