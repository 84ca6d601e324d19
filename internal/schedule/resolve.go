package schedule

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

type Mode string

const (
	ModeNotFound Mode = "not_found"
	ModeImage    Mode = "image"
	ModeAgenda   Mode = "agenda"
)

// DefaultUpcomingLimit caps the upcoming list shown on screen.
const DefaultUpcomingLimit = 6

// Entry is an event as shown on a TV.
type Entry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Tags     []string  `json:"tags,omitempty"`
}

func toEntries(events []model.Event) []Entry {
	out := make([]Entry, 0, len(events))
	for _, e := range events {
		out = append(out, Entry{
			ID:       e.ID,
			Name:     e.Name,
			Location: e.Location,
			Start:    e.StartDateTime,
			End:      e.EndDateTime,
			Tags:     e.Tags,
		})
	}
	return out
}

// Display is the resolved state of one TV.
type Display struct {
	Mode          Mode              `json:"mode"`
	Slug          string            `json:"slug"`
	TVID          string            `json:"tv_id,omitempty"`
	Name          string            `json:"name,omitempty"`
	Orientation   model.Orientation `json:"orientation,omitempty"`
	Image         string            `json:"image,omitempty"`
	Active        []Entry           `json:"active"`
	Upcoming      []Entry           `json:"upcoming"`
	UpcomingTotal int               `json:"upcoming_total"`
	Week          []AgendaDay       `json:"week,omitempty"`
	ResolvedAt    time.Time         `json:"resolved_at"`
}

// Fingerprint identifies the visible content, ignoring ResolvedAt. Two
// displays with equal fingerprints render identically.
func (d Display) Fingerprint() string {
	d.ResolvedAt = time.Time{}
	raw, _ := json.Marshal(d)
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}

type Options struct {
	// UpcomingLimit caps Display.Upcoming; <= 0 means DefaultUpcomingLimit.
	UpcomingLimit int
	// Weekdays are the agenda columns; empty skips the weekly grouping.
	Weekdays []Weekday
	// Location is the wall-clock zone for weekday grouping; nil keeps now's.
	Location *time.Location
}

// Resolve decides what the TV addressed by slug shows at now. A nil tv yields
// the not-found display. An override image wins over any event data. Otherwise
// the TV's not-yet-elapsed events are split into active and upcoming, and the
// week grid lists all of the TV's events in the current week.
func Resolve(tv *model.TV, slug string, events []model.Event, now time.Time, opts Options) Display {
	if opts.Location != nil {
		now = now.In(opts.Location)
	}
	d := Display{Slug: slug, Active: []Entry{}, Upcoming: []Entry{}, ResolvedAt: now}

	if tv == nil {
		d.Mode = ModeNotFound
		return d
	}

	d.TVID = tv.ID
	d.Name = tv.Name
	d.Orientation = tv.Orientation

	if tv.HasImage() {
		d.Mode = ModeImage
		d.Image = tv.ActiveImage
		return d
	}

	d.Mode = ModeAgenda
	mine := EventsForTV(events, tv.ID, now)
	upcoming := UpcomingEvents(mine, now)

	limit := opts.UpcomingLimit
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	d.UpcomingTotal = len(upcoming)
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}

	d.Active = toEntries(ActiveEvents(mine, now))
	d.Upcoming = toEntries(upcoming)
	if len(opts.Weekdays) > 0 {
		d.Week = GroupByWeekday(AssignedTo(events, tv.ID), opts.Weekdays, now)
	}
	return d
}
