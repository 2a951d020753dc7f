package rules

import "time"

const DefaultBoostDuration = 180 * time.Minute

// RemainingMinutes rounds the time left until end up to whole minutes.
func RemainingMinutes(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	minutes := int(left / time.Minute)
	if left%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// ResolveBoostDuration picks the requested duration, then the last used one,
// then the default.
func ResolveBoostDuration(requestedMinutes, storedMinutes int) time.Duration {
	if requestedMinutes > 0 {
		return time.Duration(requestedMinutes) * time.Minute
	}
	if storedMinutes > 0 {
		return time.Duration(storedMinutes) * time.Minute
	}
	return DefaultBoostDuration
}
