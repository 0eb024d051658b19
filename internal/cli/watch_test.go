package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedLines collects printlnFn output under a mutex; the watcher goroutine
// prints concurrently with the test.
type lockedLines struct {
	mu    sync.Mutex
	lines []string
}

func (l *lockedLines) append(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
}

func (l *lockedLines) joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

func captureConcurrentPrintln(t *testing.T) *lockedLines {
	t.Helper()
	orig := printlnFn
	ll := &lockedLines{}
	printlnFn = func(args ...any) (int, error) {
		ll.append(strings.TrimRight(fmt.Sprintln(args...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return ll
}

func watchedPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.db")
	require.NoError(t, os.WriteFile(path, []byte("seed"), 0o600))
	return path
}

func TestSessionWatcher_WarnsOnForeignWriteOnce(t *testing.T) {
	ll := captureConcurrentPrintln(t)
	path := watchedPath(t)

	w, err := startSessionWatcher(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	require.NoError(t, os.WriteFile(path, []byte("foreign"), 0o600))
	assert.Eventually(t, func() bool {
		return strings.Contains(ll.joined(), "modified by another process")
	}, 3*time.Second, 20*time.Millisecond)

	// A second foreign write must not repeat the user-facing warning.
	require.NoError(t, os.WriteFile(path, []byte("foreign again"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, strings.Count(ll.joined(), "Warning:"))
}

func TestSessionWatcher_WarnsOnJournalSideFile(t *testing.T) {
	ll := captureConcurrentPrintln(t)
	path := watchedPath(t)

	w, err := startSessionWatcher(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	require.NoError(t, os.WriteFile(path+"-journal", []byte("x"), 0o600))
	assert.Eventually(t, func() bool {
		return strings.Contains(ll.joined(), "modified by another process")
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSessionWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	ll := captureConcurrentPrintln(t)
	path := watchedPath(t)

	w, err := startSessionWatcher(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ll.joined())
}

func TestSessionWatcher_SuppressesLocalWrites(t *testing.T) {
	ll := captureConcurrentPrintln(t)
	path := watchedPath(t)

	w, err := startSessionWatcher(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	w.MarkLocalWrite()
	require.NoError(t, os.WriteFile(path, []byte("our own write"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ll.joined())
}

func TestSessionWatcher_StopsOnContextCancel(t *testing.T) {
	ll := captureConcurrentPrintln(t)
	path := watchedPath(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := startSessionWatcher(ctx, path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	cancel()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("after cancel"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ll.joined())
}

func TestWatchedService_MarksMutationsOnly(t *testing.T) {
	w := &sessionWatcher{}
	ws := &watchedService{Service: &fakeCatalog{addOut: sampleBook(1)}, watcher: w}

	_, err := ws.List(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, w.suppressed(), "reads must not count as local writes")

	_, err = ws.Add(context.Background(), "Dune", "")
	require.NoError(t, err)
	assert.True(t, w.suppressed())
}
