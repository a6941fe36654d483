// Package kobo reads book identifiers and bookmarks from a Kobo e-reader's library.
package kobo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
)

const (
	// DefaultModifiedAfter is the bookmark cutoff used when the caller gives none.
	DefaultModifiedAfter = "2000-01-01T01:00:00+00:00"

	filePrefix = "file://"
)

// Store reads KoboReader.sqlite. The device owns the database; the store
// never writes to it.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the database at path read-only.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, syncerrors.Wrapf(err, syncerrors.CodeNotFound, "Failed to connect to the database <i>%s</i>", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Identifiers returns the ISBN/ASIN candidates of a book. Sideloaded books
// (file:// content ids) are read from the EPUB itself; store-bought books
// from the library row.
func (s *Store) Identifiers(ctx context.Context, contentID string) ([]string, error) {
	var (
		ids []string
		err error
	)
	if path, ok := strings.CutPrefix(contentID, filePrefix); ok {
		ids, err = EPUBIdentifiers(path)
	} else {
		ids, err = s.isbn(ctx, contentID)
	}
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, syncerrors.NotFoundf("Failed to find ISBN for book <i>%s</i>", contentID)
	}

	s.logger.Debug("identifiers found", "content_id", contentID, "identifiers", ids)
	return ids, nil
}

func (s *Store) isbn(ctx context.Context, contentID string) ([]string, error) {
	var isbn sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT ISBN FROM content WHERE BookTitle IS NULL AND ContentID = ? LIMIT 1`,
		contentID,
	).Scan(&isbn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, syncerrors.NotFoundf("Failed to find content id <i>%s</i> in the database", contentID)
	}
	if err != nil {
		return nil, fmt.Errorf("query isbn of %s: %w", contentID, err)
	}

	var ids []string
	if id := NormalizeIdentifier(isbn.String); id != "" {
		ids = append(ids, id)
	}
	return ids, nil
}
