package db

import (
	"context"

	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

// GetSession returns the stored session, or the signed-out zero value.
func (s *kvStore) GetSession(ctx context.Context) model.Session {
	return kv.Load(ctx, s.kv, s.keys.User(), model.Session{})
}

func (s *kvStore) SetSession(ctx context.Context, session model.Session) error {
	return kv.Save(ctx, s.kv, s.keys.User(), session)
}

func (s *kvStore) ClearSession(ctx context.Context) error {
	return s.kv.Delete(ctx, s.keys.User())
}
