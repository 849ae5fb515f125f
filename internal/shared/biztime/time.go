// Package biztime centralizes time handling. All storage and comparisons in
// this service use UTC; implicit local timezone is prohibited.
package biztime

import "time"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// IsActive reports whether a validity window that ends at endedAt is still
// open at the given evaluation time. A nil endedAt means the window never
// closed.
func IsActive(endedAt *time.Time, at time.Time) bool {
	return endedAt == nil || endedAt.After(at)
}
