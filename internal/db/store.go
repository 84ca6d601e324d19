// exposes a Store interface that is passed to API calls, backed by a kv.Store
package db

import (
	"context"
	"errors"
	"time"

	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

var (
	ErrInvalidWindow      = errors.New("event end must be after its start")
	ErrSlugTaken          = errors.New("slug already in use")
	ErrInvalidSlug        = errors.New("slug must be lowercase letters, digits and single dashes")
	ErrInvalidOrientation = errors.New("orientation must be horizontal or vertical")
	ErrNotFound           = errors.New("not found")
)

type Store interface {
	// tv functions
	AddTV(ctx context.Context, tv model.TV) (*model.TV, error)
	UpdateTV(ctx context.Context, id string, patch model.TVPatch) (*model.TV, error)
	DeleteTV(ctx context.Context, id string) error
	GetTV(ctx context.Context, id string) (*model.TV, error)
	FindTVBySlug(ctx context.Context, slug string) (*model.TV, error)
	ListTVs(ctx context.Context) []model.TV
	IsSlugUnique(ctx context.Context, slug, excludeID string) bool
	SetActiveImage(ctx context.Context, id, image string) (*model.TV, error)

	// event functions
	AddEvent(ctx context.Context, event model.Event) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context) []model.Event
	EventsForTV(ctx context.Context, tvID string, now time.Time) []model.Event
	ActiveEvents(ctx context.Context, now time.Time) []model.Event
	UpcomingEvents(ctx context.Context, now time.Time) []model.Event
	RemoveTVFromEvents(ctx context.Context, tvID string) error

	// session functions
	GetSession(ctx context.Context) model.Session
	SetSession(ctx context.Context, session model.Session) error
	ClearSession(ctx context.Context) error

	// Subscribe calls fn whenever the TV or event collections change.
	Subscribe(ctx context.Context, fn func()) (func(), error)
}

type kvStore struct {
	kv   kv.Store
	keys kv.Keys
	now  func() time.Time
}

// compile-time check that kvStore implements Store
var _ Store = (*kvStore)(nil)

func NewStore(s kv.Store, keys kv.Keys) Store {
	return &kvStore{kv: s, keys: keys, now: time.Now}
}

func (s *kvStore) Subscribe(ctx context.Context, fn func()) (func(), error) {
	return s.kv.Subscribe(ctx, func(string) { fn() }, s.keys.TVs(), s.keys.Events())
}
