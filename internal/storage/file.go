package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

// File keeps one file per slot inside a directory. Another process writing the
// same directory is observed through fsnotify; this instance's own writes are
// recognised by checksum and not reported.
type File struct {
	dir    string
	logger *log.Logger

	mu      sync.Mutex
	written map[string][sha256.Size]byte
	closed  bool
	cancels []context.CancelFunc
}

func NewFile(dir string, logger *log.Logger) (*File, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("empty store dir")
	}
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir, logger: logger, written: map[string][sha256.Size]byte{}}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if !validKey(key) {
		return "", false, ErrInvalidKey
	}
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (f *File) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validKey(key) {
		return ErrInvalidKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Recorded before the rename so the watcher never sees the new content
	// without the matching checksum.
	f.written[key] = sha256.Sum256([]byte(value))
	return os.Rename(tmpName, f.path(key))
}

func (f *File) Watch(ctx context.Context) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(f.dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		cancel()
		_ = w.Close()
		return nil, ErrClosed
	}
	f.cancels = append(f.cancels, cancel)
	f.mu.Unlock()

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		defer func() {
			_ = w.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.logger.Printf("[Store] file watch error | dir=%s err=%v", f.dir, err)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				c, ok := f.changeFor(ev)
				if !ok {
					continue
				}
				if !emit(out, c) {
					f.logger.Printf("[Store] file watch dropped change | key=%s reason=buffer_full", c.Key)
				}
			}
		}
	}()
	return out, nil
}

func (f *File) changeFor(ev fsnotify.Event) (Change, bool) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return Change{}, false
	}
	key := strings.TrimSuffix(name, fileExt)
	if !validKey(key) {
		return Change{}, false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if _, err := os.Stat(ev.Name); err == nil {
			return Change{}, false
		}
		f.mu.Lock()
		delete(f.written, key)
		f.mu.Unlock()
		return Change{Key: key}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		b, err := os.ReadFile(ev.Name)
		if err != nil {
			return Change{}, false
		}
		sum := sha256.Sum256(b)
		f.mu.Lock()
		defer f.mu.Unlock()
		own, ok := f.written[key]
		if ok && own == sum {
			return Change{}, false
		}
		// The slot now holds foreign content; a later foreign write of what
		// this instance once wrote must still be reported.
		delete(f.written, key)
		return Change{Key: key, Value: string(b), Present: true}, true
	default:
		return Change{}, false
	}
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for _, cancel := range f.cancels {
		cancel()
	}
	f.cancels = nil
	return nil
}
