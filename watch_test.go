package tablekit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n1\n2\n")

	tw, err := WatchTable(context.Background(), path)
	require.NoError(t, err)
	defer tw.Close()

	df, loaded, loadErr := tw.Snapshot()
	require.NoError(t, loadErr)
	require.Equal(t, 2, df.Nrow())
	require.False(t, loaded.IsZero())

	require.NoError(t, os.WriteFile(path, []byte("a\n1\n2\n3\n"), 0644))
	require.Eventually(t, func() bool {
		df, _, loadErr := tw.Snapshot()
		return loadErr == nil && df.Nrow() == 3
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatchTableKeepsPreviousOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n1\n")

	tw, err := WatchTable(context.Background(), path)
	require.NoError(t, err)
	defer tw.Close()

	// truncate to an empty file, which fails to parse
	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.Eventually(t, func() bool {
		_, _, loadErr := tw.Snapshot()
		return loadErr != nil
	}, 5*time.Second, 10*time.Millisecond)

	df, _, _ := tw.Snapshot()
	require.Equal(t, 1, df.Nrow())
}

func TestWatchTableInitialLoadFails(t *testing.T) {
	_, err := WatchTable(context.Background(), t.TempDir()+"/missing.csv")
	require.Error(t, err)
}

func TestWatchTableClose(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a\n1\n")

	tw, err := WatchTable(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, tw.Close())
}
