// Package fileio performs the raw file reads for the loader.
//
// Reads take a shared advisory lock on the source path so that a concurrent
// writer holding the exclusive lock cannot interleave a corrupt read, and the
// blocking syscall work runs on its own goroutine so the caller can honor
// context cancellation while it waits.
package fileio

import (
	"context"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/segmentio/events/v2"
	"github.com/segmentio/stats/v4"

	"github.com/bigmb/tablekit/pkg/errs"
	"github.com/bigmb/tablekit/pkg/globalstats"
)

type readResult struct {
	data []byte
	err  error
}

// ReadFile reads the full content of path. The read itself happens on a
// dedicated goroutine under a shared flock; the calling goroutine blocks on
// the result or on ctx. If the locked read fails for any reason other than
// the file being absent, one plain unlocked read is attempted before giving
// up.
//
// A missing file is reported as an *errs.NotFoundError.
func ReadFile(ctx context.Context, path string, logger *events.Logger) ([]byte, error) {
	if logger == nil {
		logger = events.DefaultLogger
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errs.NotFound("file not found: %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	start := time.Now()
	defer func() {
		globalstats.Observe("file_read_time", time.Since(start), stats.T("path", path))
	}()

	data, err := readLocked(ctx, path)
	switch {
	case err == nil:
		return data, nil
	case errs.IsCanceled(err) || ctx.Err() != nil:
		return nil, err
	default:
		// best-effort fallback before giving up
		logger.Log("locked read of %{path}s failed, retrying unlocked: %{error}s", path, err)
		errs.Incr("locked-read-failed")
		data, plainErr := os.ReadFile(path)
		if plainErr != nil {
			return nil, errors.Wrapf(plainErr, "read %s", path)
		}
		return data, nil
	}
}

// readLocked grabs a shared lock on path and reads it on a separate
// goroutine. Exactly one read is in flight per call; there is no caching and
// no deduplication of concurrent identical requests.
func readLocked(ctx context.Context, path string) ([]byte, error) {
	resCh := make(chan readResult, 1)
	go func() {
		lock := flock.New(path)
		if err := lock.RLock(); err != nil {
			resCh <- readResult{err: errors.Wrapf(err, "lock %s for reading", path)}
			return
		}
		defer lock.Unlock()
		data, err := os.ReadFile(path)
		if err != nil {
			err = errors.Wrapf(err, "read %s", path)
		}
		resCh <- readResult{data: data, err: err}
	}()

	select {
	case res := <-resCh:
		return res.data, res.err
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "read %s", path)
	}
}
