package services

import "time"

// utcPtr stores times in UTC. SQLite compares timestamps as text, so rows
// written with different offsets would otherwise sort out of order.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
