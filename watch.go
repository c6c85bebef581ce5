package tablekit

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"github.com/segmentio/stats/v4"

	"github.com/bigmb/tablekit/pkg/errs"
)

// TableWatcher keeps an in-memory table in sync with a file on disk. It
// reloads on every write or create event and keeps serving the last good
// frame when a reload fails, so readers never observe a half-written file.
type TableWatcher struct {
	path string
	cfg  config

	mu      sync.RWMutex
	current dataframe.DataFrame
	loadErr error
	loaded  time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// WatchTable loads the table at path and starts watching it for changes.
// The initial load must succeed. Cancel the context or call Close to stop
// watching.
func WatchTable(ctx context.Context, path string, opts ...Option) (*TableWatcher, error) {
	cfg := newConfig(opts)
	df, err := Load(ctx, path, opts...)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	// watch the parent dir too so atomic rename-into-place is seen
	for _, w := range []string{path, filepath.Dir(path)} {
		if err := watcher.Add(w); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "could not watch '%s'", w)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	tw := &TableWatcher{
		path:    path,
		cfg:     cfg,
		current: df,
		loaded:  time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		<-ctx.Done()
		if err := watcher.Close(); err != nil {
			cfg.logger.Log("could not close watcher: %{err}s", err)
		}
	}()
	go tw.watch(ctx, watcher, opts)
	return tw, nil
}

// Snapshot returns the most recently loaded frame, the time it was loaded,
// and the error of the last reload attempt if it failed.
func (tw *TableWatcher) Snapshot() (dataframe.DataFrame, time.Time, error) {
	tw.mu.RLock()
	defer tw.mu.RUnlock()
	return tw.current, tw.loaded, tw.loadErr
}

// Close stops watching. Safe to call more than once.
func (tw *TableWatcher) Close() error {
	tw.cancel()
	<-tw.done
	return nil
}

func (tw *TableWatcher) watch(ctx context.Context, watcher *fsnotify.Watcher, opts []Option) {
	defer close(tw.done)

	// fsnotify recommends reading the error and events chans from
	// separate goroutines.
	go func() {
		for {
			select {
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				tw.cfg.logger.Log("fs err: %{err}s", err)
				errs.Incr("table-watch-errors", stats.T("op", "fsnotify"))
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// the dir watch reports sibling files too
			if event.Name != tw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			tw.reload(ctx, opts)
		case <-ctx.Done():
			return
		}
	}
}

func (tw *TableWatcher) reload(ctx context.Context, opts []Option) {
	df, err := Load(ctx, tw.path, opts...)

	tw.mu.Lock()
	defer tw.mu.Unlock()
	if err != nil {
		// keep serving the previous frame
		tw.loadErr = err
		tw.cfg.logger.Log("reload of %{path}s failed, keeping previous table: %{err}s", tw.path, err)
		errs.Incr("table-watch-errors", stats.T("op", "reload"))
		return
	}
	tw.current = df
	tw.loadErr = nil
	tw.loaded = time.Now()
	tw.cfg.logger.Log("reloaded %{path}s: %d rows", tw.path, df.Nrow())
}
