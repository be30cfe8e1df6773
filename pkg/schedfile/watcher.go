package schedfile

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/glueckkanja/puenktlich/pkg/logx"
)

// Watch re-applies the schedule file whenever it changes on disk, until ctx
// is done. Parse or apply failures keep the previously committed state.
//
// Editors tend to emit bursts of write events and sometimes replace the file
// via rename, so events are debounced and the watcher observes the parent
// directory rather than the file itself. When the underlying watcher gets
// into a bad state it is recreated with a small backoff.
func (m *Manager) Watch(ctx context.Context) error {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
		debounceDelay      = 250 * time.Millisecond
	)
	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() { m.reload() })
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return err
		}

		again, err := m.watchLoop(ctx, w, file, reload)
		_ = w.Close()
		if !again {
			return err
		}

		// Jittered backoff before recreating the watcher.
		d := backoff + time.Duration(rng.Int63n(int64(backoff)/2+1))
		m.log.Warn("schedule watcher restarting", logx.Duration("backoff", d), logx.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
		backoff *= 2
		if backoff > restartBackoffMax {
			backoff = restartBackoffMax
		}
	}
}

// watchLoop consumes events until ctx is done or the watcher breaks. again
// is true when the watcher should be recreated.
func (m *Manager) watchLoop(ctx context.Context, w *fsnotify.Watcher, file string, reload func()) (again bool, err error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return true, errors.New("event channel closed")
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			m.log.Debug("schedule file changed", logx.String("path", m.path), logx.String("op", ev.Op.String()))
			reload()
		case werr, ok := <-w.Errors:
			if !ok {
				return true, errors.New("error channel closed")
			}
			return true, werr
		}
	}
}

// reload parses and applies the file, skipping when content is unchanged
// since the last commit.
func (m *Manager) reload() {
	b, err := os.ReadFile(m.path)
	if err != nil {
		m.log.Warn("schedule file read failed", logx.String("path", m.path), logx.Err(err))
		return
	}

	h := hashBytes(b)
	m.mu.Lock()
	unchanged := h == m.lastHash
	m.mu.Unlock()
	if unchanged {
		m.log.Debug("schedule file unchanged; skipping", logx.String("path", m.path))
		return
	}

	f, err := Parse(b)
	if err != nil {
		m.log.Warn("schedule file rejected", logx.String("path", m.path), logx.Err(err))
		return
	}
	if err := m.Apply(f); err != nil {
		m.log.Warn("schedule apply failed", logx.String("path", m.path), logx.Err(err))
		return
	}
	m.mu.Lock()
	m.lastHash = h
	m.mu.Unlock()
	m.log.Info("schedule reloaded", logx.String("path", m.path), logx.Int("jobs", len(f.Jobs)))
}
