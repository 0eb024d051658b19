package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/cryptox"
	"github.com/bookvault-cli/bookvault/internal/dbx"
	"github.com/bookvault-cli/bookvault/internal/logging"
	"github.com/bookvault-cli/bookvault/internal/models"
	"github.com/bookvault-cli/bookvault/internal/store"
)

func newTestService(t *testing.T) (Service, *store.Store) {
	t.Helper()
	key, err := cryptox.DeriveKey([]byte("test-pass"), cryptox.ModePassphrase, "")
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "books.db"), key, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	return NewService(st, log), st
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.Status) *models.Status { return &s }

func TestAdd_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Positive(t, added.ID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)

	b := all[0]
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, models.StatusUnread, b.Status)
	assert.Nil(t, b.StartedAt)
	assert.Nil(t, b.FinishedAt)
	assert.WithinDuration(t, time.Now().UTC(), b.AddedAt, 5*time.Second)
	assert.WithinDuration(t, b.AddedAt, b.UpdatedAt, 0)
}

func TestAdd_TrimsWhitespace(t *testing.T) {
	svc, _ := newTestService(t)

	b, err := svc.Add(context.Background(), "  Dune  ", "  Frank Herbert ")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
}

func TestAdd_EmptyTitleRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "   ", "Somebody")
	require.ErrorIs(t, err, common.ErrValidation)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMarkRead_SetsDates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)

	b, err := svc.MarkRead(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, b.Status)
	require.NotNil(t, b.FinishedAt)
	require.NotNil(t, b.StartedAt)
}

func TestMarkRead_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)

	first, err := svc.MarkRead(ctx, added.ID)
	require.NoError(t, err)
	require.NotNil(t, first.FinishedAt)

	time.Sleep(10 * time.Millisecond)

	second, err := svc.MarkRead(ctx, added.ID)
	require.NoError(t, err)
	require.NotNil(t, second.FinishedAt)
	assert.WithinDuration(t, *first.FinishedAt, *second.FinishedAt, 0)
	assert.WithinDuration(t, first.UpdatedAt, second.UpdatedAt, 0)
}

func TestEdit_PartialUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Herbert")
	require.NoError(t, err)

	b, err := svc.Edit(ctx, added.ID, models.Changes{Author: strPtr("Frank Herbert")})
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "Frank Herbert", b.Author)
	assert.Equal(t, models.StatusUnread, b.Status)
	assert.WithinDuration(t, added.AddedAt, b.AddedAt, 0)
}

func TestEdit_StatusTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)

	b, err := svc.Edit(ctx, added.ID, models.Changes{Status: statusPtr(models.StatusReading)})
	require.NoError(t, err)
	require.NotNil(t, b.StartedAt)
	assert.Nil(t, b.FinishedAt)
	started := *b.StartedAt

	b, err = svc.Edit(ctx, added.ID, models.Changes{Status: statusPtr(models.StatusRead)})
	require.NoError(t, err)
	require.NotNil(t, b.FinishedAt)
	require.NotNil(t, b.StartedAt)
	assert.WithinDuration(t, started, *b.StartedAt, time.Second, "started date survives later transitions")

	b, err = svc.Edit(ctx, added.ID, models.Changes{Status: statusPtr(models.StatusUnread)})
	require.NoError(t, err)
	assert.Nil(t, b.FinishedAt, "leaving read clears the finish date")
	assert.NotNil(t, b.StartedAt)
}

func TestEdit_SameStatusKeepsFinishDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)

	first, err := svc.MarkRead(ctx, added.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	b, err := svc.Edit(ctx, added.ID, models.Changes{Title: strPtr("Dune Messiah"), Status: statusPtr(models.StatusRead)})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", b.Title)
	require.NotNil(t, b.FinishedAt)
	assert.WithinDuration(t, *first.FinishedAt, *b.FinishedAt, 0)
}

func TestEdit_InvalidTitleLeavesRecordUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)

	_, err = svc.Edit(ctx, added.ID, models.Changes{Title: strPtr("   ")})
	require.ErrorIs(t, err, common.ErrValidation)

	b, err := svc.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
}

func TestEdit_EmptyChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)

	b, err := svc.Edit(ctx, added.ID, models.Changes{})
	require.NoError(t, err)
	assert.Equal(t, added.ID, b.ID)

	_, err = svc.Edit(ctx, added.ID+100, models.Changes{})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_ThenEveryOperationReportsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Frank Herbert")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, added.ID))

	_, err = svc.Get(ctx, added.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Edit(ctx, added.ID, models.Changes{Title: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.MarkRead(ctx, added.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, added.ID), common.ErrNotFound)
}

func TestDelete_IDNeverReused(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "First", "")
	require.NoError(t, err)
	second, err := svc.Add(ctx, "Second", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, second.ID))

	third, err := svc.Add(ctx, "Third", "")
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func TestList_FilterByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Unread one", "")
	require.NoError(t, err)
	reading, err := svc.Add(ctx, "Reading one", "")
	require.NoError(t, err)
	_, err = svc.Edit(ctx, reading.ID, models.Changes{Status: statusPtr(models.StatusReading)})
	require.NoError(t, err)

	onlyReading, err := svc.List(ctx, models.StatusReading)
	require.NoError(t, err)
	require.Len(t, onlyReading, 1)
	assert.Equal(t, "Reading one", onlyReading[0].Title)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, models.Status("abandoned"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestGet_InvalidID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.Get(context.Background(), -3)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestFailingTransactionLeavesNoTrace(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := st.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO books (title, author, status, added_at, updated_at) VALUES ('Ghost', '', 'unread', ?, ?)`,
			time.Now().UTC(), time.Now().UTC())
		require.NoError(t, err)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStatsAndTouchOpened(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.TouchOpened(ctx, "bookvault/test"))

	_, err := svc.Add(ctx, "Unread one", "")
	require.NoError(t, err)
	readBook, err := svc.Add(ctx, "Read one", "")
	require.NoError(t, err)
	_, err = svc.MarkRead(ctx, readBook.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.StatusUnread])
	assert.Equal(t, 1, stats.ByStatus[models.StatusRead])
	assert.Zero(t, stats.ByStatus[models.StatusReading])
	assert.Equal(t, "bookvault/test", stats.CreatedWith)
	require.NotNil(t, stats.CreatedAt)
	require.NotNil(t, stats.LastOpenedAt)
}

func TestTouchOpened_KeepsCreationRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.TouchOpened(ctx, "bookvault/first"))
	before, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, before.CreatedAt)

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, svc.TouchOpened(ctx, "bookvault/second"))
	after, err := svc.Stats(ctx)
	require.NoError(t, err)

	require.NotNil(t, after.CreatedAt)
	assert.WithinDuration(t, *before.CreatedAt, *after.CreatedAt, 0)
	assert.Equal(t, "bookvault/first", after.CreatedWith)
	assert.True(t, after.LastOpenedAt.After(*before.LastOpenedAt))
}

func TestDuneScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	added, err := svc.Add(ctx, "Dune", "Herbert")
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusUnread, all[0].Status)

	_, err = svc.MarkRead(ctx, added.ID)
	require.NoError(t, err)

	all, err = svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusRead, all[0].Status)
	assert.NotNil(t, all[0].FinishedAt)

	require.NoError(t, svc.Delete(ctx, added.ID))

	all, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
