package kobo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/hardcover-sync/internal/domain"
)

// Chapters are content rows of type 9. Bookmarks in the first chapter have
// no preceding rows, hence the LEFT JOIN.
const bookmarksQuery = `
SELECT
	Bookmark.Text,
	COALESCE(Bookmark.Annotation, ''),
	COALESCE(Bookmark.DateCreated, ''),
	COALESCE(Bookmark.ChapterProgress, 0.0),
	COALESCE(chapter.WordCount, 0),
	COALESCE(SUM(before.WordCount), 0)
FROM Bookmark
JOIN content AS chapter
	ON chapter.ContentID = Bookmark.ContentID
LEFT JOIN content AS before
	ON before.BookID = Bookmark.VolumeID
	AND before.ContentType = 9
	AND before.VolumeIndex < chapter.VolumeIndex
WHERE Bookmark.VolumeID = ?
	AND Bookmark.DateModified > ?
	AND Bookmark.Hidden = 'false'
	AND Bookmark.Text != ''
	AND EXISTS (
		SELECT 1
		FROM content
		WHERE content.___UserID = Bookmark.UserID
	)
GROUP BY Bookmark.BookmarkID
ORDER BY Bookmark.DateCreated, Bookmark.BookmarkID`

// TotalWords returns the word count of a whole book.
func (s *Store) TotalWords(ctx context.Context, contentID string) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(WordCount) FROM content WHERE BookID = ?`,
		contentID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("query total word count of %s: %w", contentID, err)
	}
	return total.Int64, nil
}

// BookmarkSources returns the visible highlights of a book modified after
// the cutoff (DefaultModifiedAfter when empty), oldest first, with the word
// counts needed to locate them.
func (s *Store) BookmarkSources(ctx context.Context, contentID, modifiedAfter string) ([]domain.BookmarkSource, error) {
	if modifiedAfter == "" {
		modifiedAfter = DefaultModifiedAfter
	}

	total, err := s.TotalWords(ctx, contentID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, bookmarksQuery, contentID, modifiedAfter)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks of %s: %w", contentID, err)
	}
	defer rows.Close()

	var sources []domain.BookmarkSource
	for rows.Next() {
		src := domain.BookmarkSource{WordCounts: domain.WordCounts{Total: total}}
		if err := rows.Scan(
			&src.Text,
			&src.Annotation,
			&src.DateCreated,
			&src.WordCounts.ChapterProgress,
			&src.WordCounts.Chapter,
			&src.WordCounts.Preceding,
		); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}

	s.logger.Debug("bookmarks found",
		"content_id", contentID,
		"modified_after", modifiedAfter,
		"count", len(sources),
	)
	return sources, nil
}
