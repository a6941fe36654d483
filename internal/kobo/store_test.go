package kobo

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
)

const testSchema = `
CREATE TABLE content (
	ContentID TEXT NOT NULL,
	ContentType INTEGER,
	BookID TEXT,
	BookTitle TEXT,
	ISBN TEXT,
	WordCount INTEGER,
	VolumeIndex INTEGER,
	___UserID TEXT
);
CREATE TABLE Bookmark (
	BookmarkID TEXT NOT NULL PRIMARY KEY,
	VolumeID TEXT,
	ContentID TEXT,
	Text TEXT,
	Annotation TEXT,
	DateCreated TEXT,
	DateModified TEXT,
	ChapterProgress REAL,
	Hidden TEXT,
	UserID TEXT
);`

const testRows = `
INSERT INTO content VALUES ('book-1', 6, NULL, NULL, '978-0-00-000000-1', NULL, NULL, 'user-1');
INSERT INTO content VALUES ('book-1!ch1', 9, 'book-1', 'The Book', NULL, 300, 0, '');
INSERT INTO content VALUES ('book-1!ch2', 9, 'book-1', 'The Book', NULL, 200, 1, '');
INSERT INTO content VALUES ('book-1!ch3', 9, 'book-1', 'The Book', NULL, 500, 2, '');
INSERT INTO content VALUES ('book-2', 6, NULL, NULL, 'n/a', NULL, NULL, 'user-1');

INSERT INTO Bookmark VALUES ('bm-2', 'book-1', 'book-1!ch2', 'Quote two', 'My note', '2026-01-02T10:00:00.000', '2026-01-02T10:00:00.000', 0.5, 'false', 'user-1');
INSERT INTO Bookmark VALUES ('bm-1', 'book-1', 'book-1!ch1', 'First chapter', NULL, '2026-01-01T09:00:00.000', '2026-01-01T09:00:00.000', 0.25, 'false', 'user-1');
INSERT INTO Bookmark VALUES ('bm-old', 'book-1', 'book-1!ch3', 'Old quote', '', '2019-05-01T09:00:00.000', '2019-05-01T09:00:00.000', 1.0, 'false', 'user-1');
INSERT INTO Bookmark VALUES ('bm-hidden', 'book-1', 'book-1!ch3', 'Hidden', '', '2026-01-03T09:00:00.000', '2026-01-03T09:00:00.000', 0.1, 'true', 'user-1');
INSERT INTO Bookmark VALUES ('bm-empty', 'book-1', 'book-1!ch3', '', 'Only a note', '2026-01-03T09:00:00.000', '2026-01-03T09:00:00.000', 0.1, 'false', 'user-1');
INSERT INTO Bookmark VALUES ('bm-ghost', 'book-1', 'book-1!ch3', 'Other user', '', '2026-01-03T09:00:00.000', '2026-01-03T09:00:00.000', 0.1, 'false', 'ghost');
`

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "KoboReader.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	_, err = db.Exec(testRows)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := Open(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.sqlite"), slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerrors.ErrNotFound)
}

func TestStore_IsReadOnly(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.db.Exec(`DELETE FROM Bookmark`)
	assert.Error(t, err)
}

func TestStore_Identifiers_FromLibraryRow(t *testing.T) {
	store := setupTestStore(t)

	ids, err := store.Identifiers(context.Background(), "book-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"9780000000001"}, ids)
}

func TestStore_Identifiers_Missing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Identifiers(ctx, "unknown")
	assert.ErrorIs(t, err, syncerrors.ErrNotFound)

	_, err = store.Identifiers(ctx, "book-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "book-2")
}

func TestStore_Identifiers_FromEPUB(t *testing.T) {
	store := setupTestStore(t)
	path := writeEPUB(t, t.TempDir(), "OEBPS/content.opf", opfWithIdentifiers(
		`<dc:identifier id="uid">urn:isbn:9780000000002</dc:identifier>`,
	))

	ids, err := store.Identifiers(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, []string{"9780000000002"}, ids)
}

func TestStore_TotalWords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	total, err := store.TotalWords(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)

	total, err = store.TotalWords(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStore_BookmarkSources(t *testing.T) {
	store := setupTestStore(t)

	sources, err := store.BookmarkSources(context.Background(), "book-1", "")
	require.NoError(t, err)
	require.Len(t, sources, 3)

	old, first, second := sources[0], sources[1], sources[2]

	assert.Equal(t, "Old quote", old.Text)
	assert.Equal(t, int64(500), old.WordCounts.Preceding)

	assert.Equal(t, "First chapter", first.Text)
	assert.Empty(t, first.Annotation)
	assert.Equal(t, "2026-01-01T09:00:00.000", first.DateCreated)
	assert.Equal(t, int64(1000), first.WordCounts.Total)
	assert.Equal(t, int64(300), first.WordCounts.Chapter)
	assert.Zero(t, first.WordCounts.Preceding, "first chapter has no preceding words")
	assert.InDelta(t, 0.25, first.WordCounts.ChapterProgress, 1e-9)

	assert.Equal(t, "Quote two", second.Text)
	assert.Equal(t, "My note", second.Annotation)
	assert.Equal(t, int64(200), second.WordCounts.Chapter)
	assert.Equal(t, int64(300), second.WordCounts.Preceding)
	assert.InDelta(t, 0.5, second.WordCounts.ChapterProgress, 1e-9)
}

func TestStore_BookmarkSources_ModifiedAfter(t *testing.T) {
	store := setupTestStore(t)

	sources, err := store.BookmarkSources(context.Background(), "book-1", "2026-01-01T12:00:00.000")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Quote two", sources[0].Text)
}
