package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldialect/internal/testutil"
)

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.sql"), filepath.Join(dir, "b.sql")
	watched := map[string]string{a: "a.sql", b: "b.sql"}

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	changes := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		watchLoop(ctx, testutil.NewTestLogger(t), events, errs, watched, 20*time.Millisecond, func(files []string) {
			changes <- files
		})
	}()

	// A burst of writes is reported once; unrelated files and removals are ignored.
	events <- fsnotify.Event{Name: b, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: filepath.Join(dir, "other.sql"), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: a, Op: fsnotify.Remove}
	events <- fsnotify.Event{Name: a, Op: fsnotify.Create}
	events <- fsnotify.Event{Name: b, Op: fsnotify.Write}
	errs <- assert.AnError

	select {
	case files := <-changes:
		assert.Equal(t, []string{"a.sql", "b.sql"}, files)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	events <- fsnotify.Event{Name: a, Op: fsnotify.Write}
	select {
	case files := <-changes:
		assert.Equal(t, []string{"a.sql"}, files)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
	assert.Empty(t, changes)
}

func TestTranspileCommand_WatchNeedsFiles(t *testing.T) {
	_, _, err := execute(t, NewTranspileCommand(), testConfig("ansi", "spark"), "--watch", "-e", "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs file arguments")
}
