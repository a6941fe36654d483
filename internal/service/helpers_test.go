package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/domain"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
	"github.com/listenupapp/hardcover-sync/internal/hardcover/hardcovertest"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

const (
	userFixture = `{"me": [{"id": 7}]}`

	// trackedBookFixture is a book whose user book links edition 11 (no
	// pages) and has a read started on 2026-01-05.
	trackedBookFixture = `{"books": [{
		"id": 10,
		"pages": 400,
		"default_ebook_edition": {"id": 21, "pages": 320},
		"default_cover_edition": {"id": 22, "pages": 330},
		"user_books": [{
			"id": 500,
			"status_id": 2,
			"rating": 4.5,
			"review_slate": {"document": {"object": "document", "children": [
				{"object": "block", "type": "paragraph", "data": {}, "children": [{"object": "text", "text": "Great book"}]}
			]}},
			"review_has_spoilers": false,
			"sponsored_review": false,
			"reviewed_at": "2026-01-10",
			"edition": {"id": 11, "pages": null},
			"user_book_reads": [{"id": 900, "progress_pages": 40, "started_at": "2026-01-05"}]
		}]
	}]}`

	// untrackedBookFixture is a book the user does not track yet.
	untrackedBookFixture = `{"books": [{
		"id": 10,
		"pages": 250,
		"editions": [],
		"default_ebook_edition": {"id": 21, "pages": 250},
		"default_cover_edition": null,
		"user_books": []
	}]}`
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

const fixedToday = "2026-03-14"

func ptr[T any](v T) *T {
	return &v
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeLibrary is an in-memory device library.
type fakeLibrary struct {
	identifiers   map[string][]string
	sources       []domain.BookmarkSource
	identifierErr error

	identifierCalls int
	modifiedAfter   []string
}

func (l *fakeLibrary) Identifiers(_ context.Context, contentID string) ([]string, error) {
	l.identifierCalls++
	if l.identifierErr != nil {
		return nil, l.identifierErr
	}
	ids, ok := l.identifiers[contentID]
	if !ok {
		return nil, syncerrors.NotFoundf("Failed to find ISBN for book <i>%s</i>", contentID)
	}
	return ids, nil
}

func (l *fakeLibrary) BookmarkSources(_ context.Context, _ string, modifiedAfter string) ([]domain.BookmarkSource, error) {
	l.modifiedAfter = append(l.modifiedAfter, modifiedAfter)
	return l.sources, nil
}

// services bundles the service graph over one scripted executor.
type services struct {
	remote     *hardcovertest.Executor
	library    *fakeLibrary
	identities *IdentityResolver
	userBooks  *UserBookSynchronizer
	journals   *JournalReconciler
	progress   *ProgressService
	reviews    *ReviewService
	notes      *JournalService
	search     *SearchService
}

func newServices(t *testing.T, mode config.BookmarkMode) *services {
	t.Helper()

	remote := hardcovertest.New()
	library := &fakeLibrary{identifiers: map[string][]string{}}
	logger := testLogger()
	validator := validation.New()

	identities := NewIdentityResolver(remote, logger)
	userBooks := NewUserBookSynchronizer(remote, logger)
	userBooks.now = func() time.Time { return fixedNow }
	journals := NewJournalReconciler(remote, logger)

	return &services{
		remote:     remote,
		library:    library,
		identities: identities,
		userBooks:  userBooks,
		journals:   journals,
		progress:   NewProgressService(library, identities, userBooks, journals, validator, mode, logger),
		reviews:    NewReviewService(library, identities, userBooks, validator, logger),
		notes:      NewJournalService(library, identities, journals, remote, validator, logger),
		search:     NewSearchService(remote, validator, logger),
	}
}

// resolve runs identity resolution against a scripted GetBook reply.
func resolve(t *testing.T, s *services, bookFixture string) *Identity {
	t.Helper()

	s.remote.On(hardcover.GetBook, bookFixture)
	identity, err := s.identities.Resolve(context.Background(), domain.BookReference{BookID: 10}, 7)
	require.NoError(t, err)
	s.remote.Reset()
	return identity
}
