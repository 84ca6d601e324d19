// Package schedule decides what a TV shows at a given instant. Everything here
// is pure: callers pass the full event set and "now".
package schedule

import (
	"slices"
	"time"

	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

// IsActive reports whether now lies in the closed interval [start, end].
func IsActive(e model.Event, now time.Time) bool {
	return !now.Before(e.StartDateTime) && !now.After(e.EndDateTime)
}

// IsUpcoming reports whether the event starts strictly after now. An event
// whose start equals now is active, not upcoming.
func IsUpcoming(e model.Event, now time.Time) bool {
	return e.StartDateTime.After(now)
}

// IsOver reports whether the event ended strictly before now.
func IsOver(e model.Event, now time.Time) bool {
	return e.EndDateTime.Before(now)
}

// SortByStart returns a copy of events ordered ascending by start. Ties keep
// their input order.
func SortByStart(events []model.Event) []model.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return a.StartDateTime.Compare(b.StartDateTime)
	})
	return out
}

func filter(events []model.Event, keep func(model.Event) bool) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// AssignedTo keeps every event shown on tvID, elapsed or not, ordered by start.
func AssignedTo(events []model.Event, tvID string) []model.Event {
	return SortByStart(filter(events, func(e model.Event) bool {
		return e.ShownOn(tvID)
	}))
}

// EventsForTV keeps the events assigned to tvID that have not fully elapsed,
// ordered by start. Not-yet-started events are included.
func EventsForTV(events []model.Event, tvID string, now time.Time) []model.Event {
	return SortByStart(filter(events, func(e model.Event) bool {
		return e.ShownOn(tvID) && !IsOver(e, now)
	}))
}

// ActiveEvents keeps the events running at now, ordered by start.
func ActiveEvents(events []model.Event, now time.Time) []model.Event {
	return SortByStart(filter(events, func(e model.Event) bool {
		return IsActive(e, now)
	}))
}

// UpcomingEvents keeps the events starting after now, ordered by start.
func UpcomingEvents(events []model.Event, now time.Time) []model.Event {
	return SortByStart(filter(events, func(e model.Event) bool {
		return IsUpcoming(e, now)
	}))
}
