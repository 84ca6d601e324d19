package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying changed keys.
const NotifyChannel = "kv_changes"

// Connect attempts and the pause between them while postgres comes up.
const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// ConnectPostgres dials dsn until it answers a ping, giving up after
// connectAttempts tries or when ctx ends.
func ConnectPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("postgres store connected")
			return db, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", connectBackoff).Msg("postgres not reachable")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect postgres: %w", ctx.Err())
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("connect postgres: %d attempts: %w", connectAttempts, lastErr)
}

// PostgresStore keeps values in the kv_entries jsonb table and fans out
// changes with pg_notify. Subscriptions open a dedicated pq.Listener on first
// use.
type PostgresStore struct {
	db        *sqlx.DB
	dsn       string
	listeners *Listeners

	mu       sync.Mutex
	listener *pq.Listener
	done     chan struct{}
	wg       sync.WaitGroup
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sqlx.DB, dsn string) *PostgresStore {
	return &PostgresStore{
		db:        db,
		dsn:       dsn,
		listeners: NewListeners(),
		done:      make(chan struct{}),
	}
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv get failed")
		return nil, err
	}
	return value, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		updated_at = now()
		`, key, string(value)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv set failed")
		return err
	}
	return p.notify(ctx, p.db, key)
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv delete failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return p.notify(ctx, p.db, key)
}

// Update locks the row with SELECT ... FOR UPDATE. A placeholder row is
// inserted first so that missing keys are locked too; it is rolled back when
// fn fails.
func (p *PostgresStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update of %s: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, 'null'::jsonb, now())
		ON CONFLICT (key) DO NOTHING
		`, key); err != nil {
		return fmt.Errorf("reserve %s: %w", key, err)
	}

	var current []byte
	if err := tx.GetContext(ctx, &current, `SELECT value FROM kv_entries WHERE key = $1 FOR UPDATE`, key); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE kv_entries
		SET value = $2::jsonb,
		updated_at = now()
		WHERE key = $1
		`, key, string(next)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv update failed")
		return err
	}
	// delivered to listeners on commit
	if err := p.notify(ctx, tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *PostgresStore) notify(ctx context.Context, exec sqlx.ExecerContext, key string) error {
	if _, err := exec.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("kv notify failed")
		return err
	}
	return nil
}

func (p *PostgresStore) Subscribe(_ context.Context, l Listener, keys ...string) (func(), error) {
	if err := p.ensureListener(); err != nil {
		return nil, err
	}
	return p.listeners.Add(l, keys...), nil
}

func (p *PostgresStore) ensureListener() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.listener != nil {
		return nil
	}

	listener := pq.NewListener(p.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn().Err(err).Int("event", int(ev)).Msg("kv listener connection event")
		}
	})
	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		return fmt.Errorf("listen on %s: %w", NotifyChannel, err)
	}
	p.listener = listener

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.done:
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil after a reconnect; notifications may have been missed
				if n == nil {
					log.Warn().Msg("kv listener reconnected")
					continue
				}
				p.listeners.Notify(n.Extra)
			}
		}
	}()
	return nil
}

func (p *PostgresStore) Close() error {
	close(p.done)

	p.mu.Lock()
	var err error
	if p.listener != nil {
		err = p.listener.Close()
	}
	p.mu.Unlock()

	p.wg.Wait()
	if dbErr := p.db.Close(); err == nil {
		err = dbErr
	}
	return err
}
