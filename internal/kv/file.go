package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key inside a directory. A fsnotify watcher
// on the directory delivers changes written by any process sharing it.
type FileStore struct {
	dir       string
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	listeners *Listeners
	done      chan struct{}
	wg        sync.WaitGroup
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fs := &FileStore{
		dir:       dir,
		watcher:   watcher,
		listeners: NewListeners(),
		done:      make(chan struct{}),
	}
	fs.wg.Add(1)
	go fs.watch()

	log.Info().Str("dir", dir).Msg("file store ready")
	return fs, nil
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, url.PathEscape(key)+fileExt)
}

func (fs *FileStore) keyFromPath(p string) (string, bool) {
	base := filepath.Base(p)
	if !strings.HasSuffix(base, fileExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

func (fs *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := os.ReadFile(fs.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, nil
}

// write replaces the file atomically through a temp file + rename.
func (fs *FileStore) write(key string, value []byte) error {
	tmp, err := os.CreateTemp(fs.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), fs.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (fs *FileStore) Set(_ context.Context, key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write(key, value)
}

func (fs *FileStore) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := os.Remove(fs.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Update is atomic against writers in this process only; the rename keeps
// readers in other processes from observing partial files.
func (fs *FileStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	current, err := fs.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return fs.write(key, next)
}

func (fs *FileStore) Subscribe(_ context.Context, l Listener, keys ...string) (func(), error) {
	return fs.listeners.Add(l, keys...), nil
}

func (fs *FileStore) watch() {
	defer fs.wg.Done()
	for {
		select {
		case <-fs.done:
			return
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if key, ok := fs.keyFromPath(event.Name); ok {
				fs.listeners.Notify(key)
			}
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Str("dir", fs.dir).Msg("file store watcher error")
		}
	}
}

func (fs *FileStore) Close() error {
	close(fs.done)
	err := fs.watcher.Close()
	fs.wg.Wait()
	return err
}
