// Package redis is the go-redis backed key-value store. Values are plain
// strings; every write publishes the key on a change channel so that other
// processes sharing the server see it.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
)

const maxTxRetries = 8

type Store struct {
	Rdb       *redis.Client
	channel   string
	listeners *kv.Listeners

	mu     sync.Mutex
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

var _ kv.Store = (*Store)(nil)

func NewClient(address, username, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// NewStore wraps rdb. channel carries change notifications and should be
// namespaced like the keys (e.g. "agora_lineup_changes").
func NewStore(rdb *redis.Client, channel string) *Store {
	return &Store{
		Rdb:       rdb,
		channel:   channel,
		listeners: kv.NewListeners(),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.Rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read key from redis")
		return nil, err
	}
	return raw, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.Rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.Publish(ctx, s.channel, key)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to add key to redis")
	}
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.Rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Publish(ctx, s.channel, key)
		return nil
	})
	return err
}

// Update uses WATCH/MULTI and retries when another writer touched the key
// between the read and the write.
func (s *Store) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			pipe.Publish(ctx, s.channel, key)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := s.Rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		log.Debug().Str("key", key).Int("attempt", attempt).Msg("optimistic update conflict, retrying")
	}
	return fmt.Errorf("update %s: gave up after %d conflicting attempts", key, maxTxRetries)
}

func (s *Store) Subscribe(ctx context.Context, l kv.Listener, keys ...string) (func(), error) {
	if err := s.ensureSubscribed(ctx); err != nil {
		return nil, err
	}
	return s.listeners.Add(l, keys...), nil
}

func (s *Store) ensureSubscribed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pubsub != nil {
		return nil
	}

	pubsub := s.Rdb.Subscribe(context.Background(), s.channel)
	// wait for the subscription confirmation so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", s.channel, err)
	}
	s.pubsub = pubsub

	ch := pubsub.Channel()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for msg := range ch {
			s.listeners.Notify(msg.Payload)
		}
	}()
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	var err error
	if s.pubsub != nil {
		err = s.pubsub.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if cerr := s.Rdb.Close(); err == nil {
		err = cerr
	}
	return err
}
