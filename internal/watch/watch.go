// Package watch keeps the script collection in sync with a directory of
// .lua files.
//
// Each file becomes the script named after its base name. Leading comment
// lines may declare metadata:
//
//	-- description: reward streaks
//	-- events: onTaskComplete, onLogAdd
//
// Removing a file leaves its script in place.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/model"
)

// Ext is the script file extension.
const Ext = ".lua"

// DefaultDebounce is how long a file must stay quiet before it is synced.
const DefaultDebounce = 100 * time.Millisecond

// Saver stores a script by name, creating or updating it.
type Saver interface {
	SaveScript(ctx context.Context, in gameapi.ScriptInput) (model.Script, bool, error)
}

// Result is the outcome of syncing one file.
type Result struct {
	Path    string `json:"path"`
	Script  string `json:"script"`
	Created bool   `json:"created"`
	Err     error  `json:"-"`
}

// Watcher syncs one directory.
type Watcher struct {
	dir      string
	saver    Saver
	logger   *slog.Logger
	debounce time.Duration
	onSync   func(Result)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithDebounce sets the quiet period before a changed file is synced.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnSync registers a callback invoked after every file sync.
func WithOnSync(fn func(Result)) Option {
	return func(w *Watcher) {
		w.onSync = fn
	}
}

// New creates a Watcher for dir.
func New(dir string, saver Saver, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		saver:    saver,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ParseHeader reads metadata from the leading "--" comment lines of code.
func ParseHeader(code string) (description string, events []string) {
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "--")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "description":
			description = value
		case "events":
			for _, ev := range strings.Split(value, ",") {
				if ev = strings.TrimSpace(ev); ev != "" {
					events = append(events, ev)
				}
			}
		}
	}
	return description, events
}

// SyncFile saves the script held in path.
func (w *Watcher) SyncFile(ctx context.Context, path string) Result {
	name := strings.TrimSuffix(filepath.Base(path), Ext)
	res := Result{Path: path, Script: name}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	code := string(data)
	description, events := ParseHeader(code)
	_, res.Created, res.Err = w.saver.SaveScript(ctx, gameapi.ScriptInput{
		Name:        name,
		Description: description,
		Code:        code,
		Events:      events,
	})

	if res.Err != nil {
		w.logger.Error("script sync failed", "path", path, "error", res.Err)
	} else {
		w.logger.Info("script synced", "script", name, "created", res.Created)
	}
	if w.onSync != nil {
		w.onSync(res)
	}
	return res
}

// SyncAll saves every script file in the directory, in name order.
func (w *Watcher) SyncAll(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}
	var out []Result
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		out = append(out, w.SyncFile(ctx, filepath.Join(w.dir, e.Name())))
	}
	return out, nil
}

// Run syncs the directory once, then watches it and syncs files as they
// change until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if _, err := w.SyncAll(ctx); err != nil {
		return err
	}

	pending := map[string]struct{}{}
	timer := newDebounceTimer()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != Ext {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Info("script file removed, script kept", "path", event.Name)
				delete(pending, event.Name)
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = struct{}{}
				resetDebounceTimer(timer, w.debounce)
			}

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			for _, p := range paths {
				w.SyncFile(ctx, p)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

func resetDebounceTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}
