package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/domain"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

// LocalLibrary is the device side of a sync.
type LocalLibrary interface {
	IdentifierSource
	BookmarkSources(ctx context.Context, contentID, modifiedAfter string) ([]domain.BookmarkSource, error)
}

// ProgressRequest reports a read percentage for a device book.
type ProgressRequest struct {
	ContentID string `flag:"content-id" validate:"required"`
	// BookID links the book manually, bypassing identifiers.
	BookID  int `flag:"book-id" validate:"gte=0"`
	Percent int `flag:"value" validate:"gte=0,lte=100"`
	// After limits bookmarks to those modified after it (ISO 8601).
	After string
}

// ProgressResult summarizes a progress sync.
type ProgressResult struct {
	BookID        int              `json:"book_id"`
	EditionID     int              `json:"edition_id"`
	UserBookID    int              `json:"user_book_id"`
	ReadID        int              `json:"read_id"`
	ProgressPages int              `json:"progress_pages"`
	Pages         int              `json:"pages"`
	Bookmarks     *BookmarkSummary `json:"bookmarks,omitzero"`
}

// ProgressService runs the "update" command: reading progress followed by
// the bookmark journal.
type ProgressService struct {
	library    LocalLibrary
	identities *IdentityResolver
	userBooks  *UserBookSynchronizer
	journals   *JournalReconciler
	validator  *validation.Validator
	mode       config.BookmarkMode
	logger     *slog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(
	library LocalLibrary,
	identities *IdentityResolver,
	userBooks *UserBookSynchronizer,
	journals *JournalReconciler,
	validator *validation.Validator,
	mode config.BookmarkMode,
	logger *slog.Logger,
) *ProgressService {
	return &ProgressService{
		library:    library,
		identities: identities,
		userBooks:  userBooks,
		journals:   journals,
		validator:  validator,
		mode:       mode,
		logger:     logger,
	}
}

// Update marks the book currently reading, moves the latest read to the
// page at req.Percent and syncs bookmarks per the configured mode.
func (s *ProgressService) Update(ctx context.Context, req ProgressRequest) (*ProgressResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ref, err := Reference(ctx, s.library, req.ContentID, req.BookID)
	if err != nil {
		return nil, err
	}
	userID, err := s.identities.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.Resolve(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	status := domain.StatusCurrentlyReading
	userBook, err := s.userBooks.Sync(ctx, identity, UserBookUpdate{Status: &status})
	if err != nil {
		return nil, err
	}

	progress := ReadProgress{
		EditionID:     identity.EditionID,
		ProgressPages: domain.ProgressPages(identity.Pages, req.Percent),
	}
	read, inserted, err := s.userBooks.EnsureRead(ctx, userBook, progress)
	if err != nil {
		return nil, err
	}
	if !inserted {
		if err := s.userBooks.UpdateRead(ctx, read, progress); err != nil {
			return nil, err
		}
	}

	result := &ProgressResult{
		BookID:        identity.BookID,
		EditionID:     identity.EditionID,
		UserBookID:    userBook.UserBookID,
		ReadID:        read.ID,
		ProgressPages: progress.ProgressPages,
		Pages:         identity.Pages,
	}

	modifiedAfter, opts, ok := s.bookmarkPass(req)
	if !ok {
		s.logger.Debug("bookmark sync skipped", "mode", s.mode, "percent", req.Percent)
		return result, nil
	}

	bookmarks, err := s.bookmarks(ctx, req.ContentID, modifiedAfter)
	if err != nil {
		return nil, err
	}
	summary, err := s.journals.SyncBookmarks(ctx, identity, bookmarks, opts)
	if err != nil {
		return nil, err
	}
	result.Bookmarks = &summary

	return result, nil
}

// bookmarkPass decides whether bookmarks are synced, which of them are read
// from the device and how they are written. Finished mode syncs every
// bookmark once, at 100 %, without action dates. Existing entries are still
// matched against req.After in every mode.
func (s *ProgressService) bookmarkPass(req ProgressRequest) (string, BookmarkSyncOptions, bool) {
	switch s.mode {
	case config.BookmarksNever:
		return "", BookmarkSyncOptions{}, false
	case config.BookmarksFinished:
		if req.Percent != 100 {
			return "", BookmarkSyncOptions{}, false
		}
		return "", BookmarkSyncOptions{After: req.After, NullActionAt: true}, true
	default:
		return req.After, BookmarkSyncOptions{After: req.After}, true
	}
}

// bookmarks reads bookmark sources and locates them. A bookmark whose
// location cannot be computed is skipped.
func (s *ProgressService) bookmarks(ctx context.Context, contentID, modifiedAfter string) ([]domain.Bookmark, error) {
	sources, err := s.library.BookmarkSources(ctx, contentID, modifiedAfter)
	if err != nil {
		return nil, syncerrors.Wrapf(err, syncerrors.CodeNotFound, "Failed to read bookmarks of <i>%s</i>", contentID)
	}

	bookmarks := make([]domain.Bookmark, 0, len(sources))
	for _, src := range sources {
		location, err := domain.ComputeLocation(src.WordCounts)
		if err != nil {
			s.logger.Warn("skipping bookmark",
				"content_id", contentID,
				"date_created", src.DateCreated,
				"error", err,
			)
			continue
		}
		bookmarks = append(bookmarks, domain.Bookmark{
			Text:        src.Text,
			Annotation:  src.Annotation,
			DateCreated: src.DateCreated,
			Location:    location,
		})
	}

	s.logger.Debug("bookmarks located", "content_id", contentID, "count", len(bookmarks), "skipped", len(sources)-len(bookmarks))
	return bookmarks, nil
}
