package player

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

// Publisher delivers a payload to a topic, retained for late subscribers.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// DisplayTopic is the topic a TV's resolved display is published on.
func DisplayTopic(slug string) string {
	return fmt.Sprintf("tv/%s/display", slug)
}

// Broadcaster publishes the display of every TV whenever it changes.
type Broadcaster struct {
	resolver *Resolver
	pub      Publisher
	last     map[string]string // slug -> fingerprint
}

func NewBroadcaster(resolver *Resolver, pub Publisher) *Broadcaster {
	return &Broadcaster{resolver: resolver, pub: pub, last: make(map[string]string)}
}

// Run syncs on every tick and store change until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	changes, mark := Signal()
	unsubscribe, err := b.resolver.store.Subscribe(ctx, mark)
	if err != nil {
		return err
	}
	defer unsubscribe()

	log.Info().Dur("interval", b.resolver.interval).Msg("display broadcaster started")
	Run(ctx, b.resolver.interval, changes, b.Sync)
	log.Info().Msg("display broadcaster stopped")
	return nil
}

// Sync publishes every TV whose display changed since its last publication.
// TVs that disappeared get a final not-found display.
func (b *Broadcaster) Sync(ctx context.Context) {
	seen := make(map[string]bool)
	for _, tv := range b.resolver.store.ListTVs(ctx) {
		seen[tv.Slug] = true
		b.publish(b.resolver.Resolve(ctx, tv.Slug))
	}
	for slug := range b.last {
		if seen[slug] {
			continue
		}
		gone := schedule.Resolve(nil, slug, nil, b.resolver.now(), b.resolver.options)
		if b.publish(gone) {
			delete(b.last, slug)
		}
	}
}

// publish sends d if its content changed and reports whether it was sent.
func (b *Broadcaster) publish(d schedule.Display) bool {
	fp := d.Fingerprint()
	if b.last[d.Slug] == fp {
		return false
	}

	payload, err := json.Marshal(d)
	if err != nil {
		log.Error().Err(err).Str("slug", d.Slug).Msg("failed to encode display")
		return false
	}
	if err := b.pub.Publish(DisplayTopic(d.Slug), payload); err != nil {
		log.Error().Err(err).Str("slug", d.Slug).Msg("failed to publish display")
		return false
	}

	b.last[d.Slug] = fp
	log.Debug().Str("slug", d.Slug).Str("mode", string(d.Mode)).Msg("display published")
	return true
}
