package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

var now = time.Date(2025, time.February, 12, 10, 30, 0, 0, time.UTC) // a Wednesday

func event(id string, start, end time.Time, tvIDs ...string) model.Event {
	return model.Event{ID: id, Name: "event " + id, StartDateTime: start, EndDateTime: end, TVIDs: tvIDs}
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestRunningEventIsActiveNotUpcoming(t *testing.T) {
	e := event("running", now.Add(-10*time.Minute), now.Add(10*time.Minute), "tv")

	assert.Equal(t, []string{"running"}, ids(ActiveEvents([]model.Event{e}, now)))
	assert.Empty(t, UpcomingEvents([]model.Event{e}, now))
}

func TestFutureEventIsUpcomingNotActive(t *testing.T) {
	e := event("soon", now.Add(5*time.Minute), now.Add(time.Hour), "tv")

	assert.Equal(t, []string{"soon"}, ids(UpcomingEvents([]model.Event{e}, now)))
	assert.Empty(t, ActiveEvents([]model.Event{e}, now))
}

func TestElapsedEventIsExcludedEverywhere(t *testing.T) {
	e := event("done", now.Add(-time.Hour), now.Add(-time.Second), "tv")
	all := []model.Event{e}

	assert.Empty(t, ActiveEvents(all, now))
	assert.Empty(t, UpcomingEvents(all, now))
	assert.Empty(t, EventsForTV(all, "tv", now))
}

func TestBoundariesAreActive(t *testing.T) {
	startsNow := event("starts", now, now.Add(time.Hour), "tv")
	endsNow := event("ends", now.Add(-time.Hour), now, "tv")
	all := []model.Event{startsNow, endsNow}

	assert.ElementsMatch(t, []string{"starts", "ends"}, ids(ActiveEvents(all, now)))
	assert.Empty(t, UpcomingEvents(all, now))
	assert.Len(t, EventsForTV(all, "tv", now), 2)
}

func TestActiveAndUpcomingAreDisjoint(t *testing.T) {
	all := []model.Event{
		event("a", now.Add(-2*time.Hour), now.Add(-time.Hour), "tv"),
		event("b", now.Add(-time.Minute), now.Add(time.Minute), "tv"),
		event("c", now, now.Add(time.Minute), "tv"),
		event("d", now.Add(time.Nanosecond), now.Add(time.Hour), "tv"),
		event("e", now.Add(24*time.Hour), now.Add(25*time.Hour), "tv"),
	}

	for _, at := range []time.Time{now.Add(-3 * time.Hour), now, now.Add(30 * time.Minute), now.Add(48 * time.Hour)} {
		active := ids(ActiveEvents(all, at))
		upcoming := ids(UpcomingEvents(all, at))
		for _, id := range active {
			assert.NotContains(t, upcoming, id, "at %s", at)
		}

		forTV := ids(EventsForTV(all, "tv", at))
		for _, id := range append(active, upcoming...) {
			assert.Contains(t, forTV, id, "at %s", at)
		}
	}
}

func TestEventsForTVFiltersAndSorts(t *testing.T) {
	all := []model.Event{
		event("late", now.Add(3*time.Hour), now.Add(4*time.Hour), "tv-1"),
		event("other", now.Add(time.Hour), now.Add(2*time.Hour), "tv-2"),
		event("early", now.Add(time.Hour), now.Add(2*time.Hour), "tv-1", "tv-2"),
		event("running", now.Add(-time.Hour), now.Add(time.Hour), "tv-1"),
	}

	assert.Equal(t, []string{"running", "early", "late"}, ids(EventsForTV(all, "tv-1", now)))
	assert.Equal(t, []string{"other", "early"}, ids(EventsForTV(all, "tv-2", now)))
	assert.Empty(t, EventsForTV(all, "tv-3", now))
}

func TestSortByStartIsStableAndCopies(t *testing.T) {
	in := []model.Event{
		event("b", now.Add(time.Hour), now.Add(2*time.Hour)),
		event("a1", now, now.Add(time.Hour)),
		event("a2", now, now.Add(time.Hour)),
	}
	out := SortByStart(in)

	assert.Equal(t, []string{"a1", "a2", "b"}, ids(out))
	assert.Equal(t, "b", in[0].ID)
}
