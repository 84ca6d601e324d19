package schedule

import (
	"time"

	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

// Weekday is one agenda column.
type Weekday struct {
	Label string
	Day   time.Weekday
}

var workWeek = []Weekday{
	{Label: "Segunda", Day: time.Monday},
	{Label: "Terça", Day: time.Tuesday},
	{Label: "Quarta", Day: time.Wednesday},
	{Label: "Quinta", Day: time.Thursday},
	{Label: "Sexta", Day: time.Friday},
}

var saturday = Weekday{Label: "Sábado", Day: time.Saturday}

// Weekdays returns the Monday..Friday columns, plus Saturday when asked.
// Sunday never has a column.
func Weekdays(includeSaturday bool) []Weekday {
	days := make([]Weekday, 0, len(workWeek)+1)
	days = append(days, workWeek...)
	if includeSaturday {
		days = append(days, saturday)
	}
	return days
}

// IsToday reports whether the column matches now's day of week.
func (w Weekday) IsToday(now time.Time) bool {
	return w.Day == now.Weekday()
}

type AgendaEntry struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	StartTime string   `json:"start_time"` // HH:mm
	EndTime   string   `json:"end_time"`
	Tags      []string `json:"tags,omitempty"`
}

type AgendaDay struct {
	Label   string        `json:"label"`
	Date    string        `json:"date"` // DD/MM
	IsToday bool          `json:"is_today"`
	Events  []AgendaEntry `json:"events"`
}

// WeekStart returns midnight of the Monday of the week shown at now, in now's
// location. On Sunday the coming week is shown.
func WeekStart(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if now.Weekday() == time.Sunday {
		return midnight.AddDate(0, 0, 1)
	}
	return midnight.AddDate(0, 0, -int(now.Weekday()-time.Monday))
}

// GroupByWeekday buckets events into the given columns by the weekday of their
// start, keeping only events starting inside the week shown at now. Within a
// column the input order is kept as is.
func GroupByWeekday(events []model.Event, days []Weekday, now time.Time) []AgendaDay {
	loc := now.Location()
	weekStart := WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	out := make([]AgendaDay, 0, len(days))
	for _, d := range days {
		offset := (int(d.Day) + 6) % 7 // Monday = 0
		out = append(out, AgendaDay{
			Label:   d.Label,
			Date:    weekStart.AddDate(0, 0, offset).Format("02/01"),
			IsToday: d.IsToday(now),
			Events:  []AgendaEntry{},
		})
	}

	for _, e := range events {
		start := e.StartDateTime.In(loc)
		if start.Before(weekStart) || !start.Before(weekEnd) {
			continue
		}
		for i, d := range days {
			if d.Day != start.Weekday() {
				continue
			}
			out[i].Events = append(out[i].Events, AgendaEntry{
				ID:        e.ID,
				Name:      e.Name,
				Location:  e.Location,
				StartTime: start.Format("15:04"),
				EndTime:   e.EndDateTime.In(loc).Format("15:04"),
				Tags:      e.Tags,
			})
		}
	}
	return out
}
