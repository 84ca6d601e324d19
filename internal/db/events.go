package db

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

func (s *kvStore) loadEvents(ctx context.Context) []model.Event {
	return kv.Load(ctx, s.kv, s.keys.Events(), []model.Event{})
}

// uniq trims values, drops empties and duplicates, and keeps first-seen order.
func uniq(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func checkWindow(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidWindow
	}
	return nil
}

func (s *kvStore) AddEvent(ctx context.Context, event model.Event) (*model.Event, error) {
	if err := checkWindow(event.StartDateTime, event.EndDateTime); err != nil {
		return nil, fmt.Errorf("add event %q: %w", event.Name, err)
	}
	event.ID = uuid.NewString()
	event.CreatedAt = s.now()
	event.TVIDs = uniq(event.TVIDs)
	if len(event.Tags) > 0 {
		event.Tags = uniq(event.Tags)
	}

	err := kv.Mutate(ctx, s.kv, s.keys.Events(), []model.Event{}, func(events []model.Event) ([]model.Event, error) {
		return append(events, event), nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("event_id", event.ID).Strs("tv_ids", event.TVIDs).Msg("event created")
	return &event, nil
}

// UpdateEvent merges patch into the stored event, validating the merged
// window. A missing id is a no-op and returns nil.
func (s *kvStore) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error) {
	var updated *model.Event
	err := kv.Mutate(ctx, s.kv, s.keys.Events(), []model.Event{}, func(events []model.Event) ([]model.Event, error) {
		i := slices.IndexFunc(events, func(e model.Event) bool { return e.ID == id })
		if i < 0 {
			return nil, kv.ErrUnchanged
		}
		next := events[i]
		if patch.Name != nil {
			next.Name = *patch.Name
		}
		if patch.Location != nil {
			next.Location = *patch.Location
		}
		if patch.StartDateTime != nil {
			next.StartDateTime = *patch.StartDateTime
		}
		if patch.EndDateTime != nil {
			next.EndDateTime = *patch.EndDateTime
		}
		if patch.TVIDs != nil {
			next.TVIDs = uniq(*patch.TVIDs)
		}
		if patch.Tags != nil {
			next.Tags = uniq(*patch.Tags)
		}
		if err := checkWindow(next.StartDateTime, next.EndDateTime); err != nil {
			return nil, fmt.Errorf("update event %s: %w", id, err)
		}
		events[i] = next
		updated = &next
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *kvStore) DeleteEvent(ctx context.Context, id string) error {
	return kv.Mutate(ctx, s.kv, s.keys.Events(), []model.Event{}, func(events []model.Event) ([]model.Event, error) {
		n := len(events)
		events = slices.DeleteFunc(events, func(e model.Event) bool { return e.ID == id })
		if len(events) == n {
			return nil, kv.ErrUnchanged
		}
		return events, nil
	})
}

func (s *kvStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	for _, e := range s.loadEvents(ctx) {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
}

func (s *kvStore) ListEvents(ctx context.Context) []model.Event {
	return s.loadEvents(ctx)
}

func (s *kvStore) EventsForTV(ctx context.Context, tvID string, now time.Time) []model.Event {
	return schedule.EventsForTV(s.loadEvents(ctx), tvID, now)
}

func (s *kvStore) ActiveEvents(ctx context.Context, now time.Time) []model.Event {
	return schedule.ActiveEvents(s.loadEvents(ctx), now)
}

func (s *kvStore) UpcomingEvents(ctx context.Context, now time.Time) []model.Event {
	return schedule.UpcomingEvents(s.loadEvents(ctx), now)
}

// RemoveTVFromEvents strips tvID from every event's assignment list. Events
// left with no TV are kept.
func (s *kvStore) RemoveTVFromEvents(ctx context.Context, tvID string) error {
	return kv.Mutate(ctx, s.kv, s.keys.Events(), []model.Event{}, func(events []model.Event) ([]model.Event, error) {
		changed := false
		for i := range events {
			n := len(events[i].TVIDs)
			events[i].TVIDs = slices.DeleteFunc(events[i].TVIDs, func(id string) bool { return id == tvID })
			changed = changed || len(events[i].TVIDs) != n
		}
		if !changed {
			return nil, kv.ErrUnchanged
		}
		return events, nil
	})
}
