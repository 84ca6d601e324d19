// Package demo seeds a showcase TV and a week of sample events.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

// Marker is written under the per-slug config key once seeding is done.
type Marker struct {
	Slug        string            `json:"slug"`
	Orientation model.Orientation `json:"orientation"`
}

type sample struct {
	name, location string
	day            int // days after Monday
	start, end     string
}

var samples = []sample{
	{"Pitch Day Startups", "Auditório Principal", 0, "09:00", "11:30"},
	{"Workshop de IA Generativa", "Sala 201", 0, "14:00", "16:00"},
	{"Meetup Frontend Brasil", "Espaço Coworking", 1, "19:00", "21:00"},
	{"Demo Day - Turma 12", "Auditório Principal", 2, "10:00", "12:00"},
	{"Painel: Futuro do Trabalho", "Sala de Eventos", 2, "15:00", "17:00"},
	{"Hackathon Ágora", "Lab de Inovação", 3, "08:00", "20:00"},
	{"Café com Investidores", "Lounge VIP", 4, "09:30", "11:00"},
	{"Happy Hour Tech", "Terraço", 4, "17:00", "19:00"},
	{"Workshop Design Systems", "Sala Criativa", 5, "10:00", "13:00"},
}

func at(day time.Time, clock string) (time.Time, error) {
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, day.Location()), nil
}

// Seed creates the slug's TV and the sample events over the week containing
// now, in now's location. It does nothing when the slug's marker exists, and
// reports whether it seeded.
func Seed(ctx context.Context, store db.Store, s kv.Store, keys kv.Keys, slug string, now time.Time) (bool, error) {
	markerKey := keys.Config(slug)
	if _, err := s.Get(ctx, markerKey); err == nil {
		return false, nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return false, fmt.Errorf("read seed marker: %w", err)
	}

	tv, err := store.FindTVBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		tv, err = store.AddTV(ctx, model.TV{Name: "TV " + slug, Slug: slug, Orientation: model.OrientationHorizontal})
	}
	if err != nil {
		return false, fmt.Errorf("seed tv %q: %w", slug, err)
	}

	monday := schedule.WeekStart(now)
	events := make([]model.Event, 0, len(samples))
	for _, sm := range samples {
		day := monday.AddDate(0, 0, sm.day)
		start, err := at(day, sm.start)
		if err != nil {
			return false, err
		}
		end, err := at(day, sm.end)
		if err != nil {
			return false, err
		}
		events = append(events, model.Event{
			Name:          sm.name,
			Location:      sm.location,
			StartDateTime: start,
			EndDateTime:   end,
			TVIDs:         []string{tv.ID},
		})
	}

	added := make([]string, 0, len(events))
	for _, e := range events {
		created, err := store.AddEvent(ctx, e)
		if err != nil {
			rollback(ctx, store, added)
			return false, fmt.Errorf("seed event %q: %w", e.Name, err)
		}
		added = append(added, created.ID)
	}

	if err := kv.Save(ctx, s, markerKey, Marker{Slug: slug, Orientation: tv.Orientation}); err != nil {
		rollback(ctx, store, added)
		return false, fmt.Errorf("write seed marker: %w", err)
	}

	log.Info().Str("slug", slug).Int("events", len(samples)).Msg("demo data seeded")
	return true, nil
}

// rollback removes the events of a failed seed so the next run starts clean.
func rollback(ctx context.Context, store db.Store, ids []string) {
	for _, id := range ids {
		if err := store.DeleteEvent(ctx, id); err != nil {
			log.Error().Err(err).Str("event_id", id).Msg("failed to roll back seeded event")
		}
	}
}
