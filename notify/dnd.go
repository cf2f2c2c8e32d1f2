package notify

import "time"

// Dnd is a daily do-not-disturb window between two whole hours, bounds included. A start
// hour after the end hour spans midnight.
type Dnd struct {
	StartHour int
	EndHour   int
}

func (d Dnd) Inside(now time.Time) bool {
	year, month, day := now.Date()
	start := time.Date(year, month, day, d.StartHour, 0, 0, 0, now.Location())
	end := time.Date(year, month, day, d.EndHour, 0, 0, 0, now.Location())

	if !start.After(end) {
		return !now.Before(start) && !now.After(end)
	}
	return !now.Before(start) || !now.After(end)
}

func (d Dnd) Outside(now time.Time) bool {
	return !d.Inside(now)
}
