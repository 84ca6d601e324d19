package db

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
	"github.com/Nixie-Tech-LLC/lineup/internal/slug"
)

func (s *kvStore) loadTVs(ctx context.Context) []model.TV {
	return kv.Load(ctx, s.kv, s.keys.TVs(), []model.TV{})
}

// slugTaken reports whether another TV than excludeID already uses value.
func slugTaken(tvs []model.TV, value, excludeID string) bool {
	return slices.ContainsFunc(tvs, func(t model.TV) bool {
		return t.Slug == value && t.ID != excludeID
	})
}

func (s *kvStore) AddTV(ctx context.Context, tv model.TV) (*model.TV, error) {
	tv.Name = strings.TrimSpace(tv.Name)
	if tv.Slug == "" {
		tv.Slug = slug.Generate(tv.Name)
	}
	if !slug.Valid(tv.Slug) {
		return nil, fmt.Errorf("add tv %q: %w", tv.Slug, ErrInvalidSlug)
	}
	if tv.Orientation == "" {
		tv.Orientation = model.OrientationHorizontal
	}
	if !tv.Orientation.Valid() {
		return nil, fmt.Errorf("add tv %q: %w", tv.Slug, ErrInvalidOrientation)
	}
	tv.ID = uuid.NewString()
	tv.CreatedAt = s.now()

	err := kv.Mutate(ctx, s.kv, s.keys.TVs(), []model.TV{}, func(tvs []model.TV) ([]model.TV, error) {
		if slugTaken(tvs, tv.Slug, "") {
			return nil, fmt.Errorf("add tv %q: %w", tv.Slug, ErrSlugTaken)
		}
		return append(tvs, tv), nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("tv_id", tv.ID).Str("slug", tv.Slug).Msg("tv created")
	return &tv, nil
}

// UpdateTV merges patch into the stored TV. A missing id is a no-op and
// returns nil.
func (s *kvStore) UpdateTV(ctx context.Context, id string, patch model.TVPatch) (*model.TV, error) {
	var updated *model.TV
	err := kv.Mutate(ctx, s.kv, s.keys.TVs(), []model.TV{}, func(tvs []model.TV) ([]model.TV, error) {
		i := slices.IndexFunc(tvs, func(t model.TV) bool { return t.ID == id })
		if i < 0 {
			return nil, kv.ErrUnchanged
		}
		next := tvs[i]
		if patch.Name != nil {
			next.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Slug != nil {
			if !slug.Valid(*patch.Slug) {
				return nil, fmt.Errorf("update tv %s: %w", id, ErrInvalidSlug)
			}
			if slugTaken(tvs, *patch.Slug, id) {
				return nil, fmt.Errorf("update tv %s to %q: %w", id, *patch.Slug, ErrSlugTaken)
			}
			next.Slug = *patch.Slug
		}
		if patch.Orientation != nil {
			if !patch.Orientation.Valid() {
				return nil, fmt.Errorf("update tv %s: %w", id, ErrInvalidOrientation)
			}
			next.Orientation = *patch.Orientation
		}
		tvs[i] = next
		updated = &next
		return tvs, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTV removes the TV and strips its id from every event.
func (s *kvStore) DeleteTV(ctx context.Context, id string) error {
	removed := false
	err := kv.Mutate(ctx, s.kv, s.keys.TVs(), []model.TV{}, func(tvs []model.TV) ([]model.TV, error) {
		n := len(tvs)
		tvs = slices.DeleteFunc(tvs, func(t model.TV) bool { return t.ID == id })
		if len(tvs) == n {
			return nil, kv.ErrUnchanged
		}
		removed = true
		return tvs, nil
	})
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	log.Info().Str("tv_id", id).Msg("tv deleted")
	return s.RemoveTVFromEvents(ctx, id)
}

func (s *kvStore) GetTV(ctx context.Context, id string) (*model.TV, error) {
	for _, tv := range s.loadTVs(ctx) {
		if tv.ID == id {
			return &tv, nil
		}
	}
	return nil, fmt.Errorf("tv %s: %w", id, ErrNotFound)
}

func (s *kvStore) FindTVBySlug(ctx context.Context, value string) (*model.TV, error) {
	for _, tv := range s.loadTVs(ctx) {
		if tv.Slug == value {
			return &tv, nil
		}
	}
	return nil, fmt.Errorf("tv with slug %q: %w", value, ErrNotFound)
}

func (s *kvStore) ListTVs(ctx context.Context) []model.TV {
	return s.loadTVs(ctx)
}

// IsSlugUnique reports whether no TV other than excludeID uses value. An
// empty excludeID checks against every TV.
func (s *kvStore) IsSlugUnique(ctx context.Context, value, excludeID string) bool {
	return !slugTaken(s.loadTVs(ctx), value, excludeID)
}

// SetActiveImage sets the override image, or clears it when image is empty.
// Events are not touched.
func (s *kvStore) SetActiveImage(ctx context.Context, id, image string) (*model.TV, error) {
	var updated *model.TV
	err := kv.Mutate(ctx, s.kv, s.keys.TVs(), []model.TV{}, func(tvs []model.TV) ([]model.TV, error) {
		i := slices.IndexFunc(tvs, func(t model.TV) bool { return t.ID == id })
		if i < 0 {
			return nil, kv.ErrUnchanged
		}
		tvs[i].ActiveImage = image
		next := tvs[i]
		updated = &next
		return tvs, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
