package player

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

// Resolver computes the display of a TV from the current store contents.
type Resolver struct {
	store    db.Store
	options  schedule.Options
	interval time.Duration
	now      func() time.Time
}

func NewResolver(store db.Store, options schedule.Options, interval time.Duration) *Resolver {
	return &Resolver{store: store, options: options, interval: interval, now: time.Now}
}

// Resolve returns what the TV addressed by slug shows right now.
func (r *Resolver) Resolve(ctx context.Context, slug string) schedule.Display {
	tv, err := r.store.FindTVBySlug(ctx, slug)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		log.Error().Err(err).Str("slug", slug).Msg("failed to look up tv")
	}
	return schedule.Resolve(tv, slug, r.store.ListEvents(ctx), r.now(), r.options)
}

// Watch emits the display for slug immediately and again each time its
// content changes, until ctx is cancelled. Ticks that resolve to the same
// content are not emitted.
func (r *Resolver) Watch(ctx context.Context, slug string, emit func(schedule.Display) error) error {
	changes, mark := Signal()
	unsubscribe, err := r.store.Subscribe(ctx, mark)
	if err != nil {
		return err
	}
	defer unsubscribe()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	last := ""
	Run(ctx, r.interval, changes, func(ctx context.Context) {
		d := r.Resolve(ctx, slug)
		fp := d.Fingerprint()
		if fp == last {
			return
		}
		if err := emit(d); err != nil {
			cancel(err)
			return
		}
		last = fp
	})

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Agenda returns the week grouping of all the TV's events, even
// while an override image is shown. ok is false when no TV has slug.
func (r *Resolver) Agenda(ctx context.Context, slug string) (week []schedule.AgendaDay, ok bool) {
	tv, err := r.store.FindTVBySlug(ctx, slug)
	if err != nil {
		return nil, false
	}

	now := r.now()
	if r.options.Location != nil {
		now = now.In(r.options.Location)
	}
	days := r.options.Weekdays
	if len(days) == 0 {
		days = schedule.Weekdays(false)
	}
	mine := schedule.AssignedTo(r.store.ListEvents(ctx), tv.ID)
	return schedule.GroupByWeekday(mine, days, now), true
}
