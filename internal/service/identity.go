package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/hardcover-sync/internal/domain"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
)

// IdentifierSource resolves a device content id to ISBN/ASIN candidates.
type IdentifierSource interface {
	Identifiers(ctx context.Context, contentID string) ([]string, error)
}

// Identity is a local book resolved to one remote book, edition and page count.
type Identity struct {
	Reference domain.BookReference
	UserID    int
	BookID    int
	EditionID int
	Pages     int
	// UserBook is nil when the user does not track the book yet.
	UserBook *domain.UserBook
}

// IdentityResolver maps book references to remote identities.
type IdentityResolver struct {
	remote hardcover.Executor
	logger *slog.Logger
}

// NewIdentityResolver creates a new identity resolver.
func NewIdentityResolver(remote hardcover.Executor, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{
		remote: remote,
		logger: logger,
	}
}

// Reference builds the book reference of a command. A manually linked book
// id wins and skips reading identifiers from the device.
func Reference(ctx context.Context, source IdentifierSource, contentID string, bookID int) (domain.BookReference, error) {
	if bookID != 0 {
		return domain.BookReference{BookID: bookID}, nil
	}
	if contentID == "" {
		return domain.BookReference{}, syncerrors.InvalidInput("One of --content-id or --book-id is required")
	}

	ids, err := source.Identifiers(ctx, contentID)
	if err != nil {
		return domain.BookReference{}, err
	}
	return domain.BookReference{Identifiers: ids}, nil
}

// CurrentUserID returns the id of the user owning the API token.
func (r *IdentityResolver) CurrentUserID(ctx context.Context) (int, error) {
	var data hardcover.UserIDData
	if err := r.remote.Execute(ctx, hardcover.GetUserID, nil, &data); err != nil {
		return 0, syncerrors.Remotef(err, "Failed to find Hardcover.app user")
	}
	if len(data.Me) == 0 {
		return 0, syncerrors.Remotef(hardcover.ErrNoData, "Failed to find Hardcover.app user")
	}

	r.logger.Debug("user found", "user_id", data.Me[0].ID)
	return data.Me[0].ID, nil
}

// Resolve fetches the book, its candidate editions and the user's book and
// latest read in a single query, then picks the edition and page count.
func (r *IdentityResolver) Resolve(ctx context.Context, ref domain.BookReference, userID int) (*Identity, error) {
	book, err := r.Lookup(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	edition := selectEdition(book)
	if edition == nil {
		return nil, syncerrors.EditionNotFoundf("Failed to select edition for book <i>%d</i>", book.ID)
	}

	pages, ok := selectPages(book)
	if !ok {
		return nil, syncerrors.PageCountMissingf(
			"Unable to find the total page count for book <i>%d</i>. Please update the book on Hardcover.app with the correct page count.",
			book.ID,
		)
	}

	identity := &Identity{
		Reference: ref,
		UserID:    userID,
		BookID:    book.ID,
		EditionID: edition.ID,
		Pages:     pages,
		UserBook:  book.UserBook(),
	}

	r.logger.Debug("book resolved",
		"reference", ref.String(),
		"book_id", identity.BookID,
		"edition_id", identity.EditionID,
		"pages", identity.Pages,
		"tracked", identity.UserBook != nil,
	)
	return identity, nil
}

// Lookup fetches the remote book a reference points at, with the user's
// book when tracked, without selecting an edition or page count.
func (r *IdentityResolver) Lookup(ctx context.Context, ref domain.BookReference, userID int) (*domain.Book, error) {
	switch {
	case ref.ByIdentifiers():
		var data hardcover.EditionsData
		vars := hardcover.IdentityVars{Identifiers: ref.Identifiers, UserID: userID}
		if err := r.remote.Execute(ctx, hardcover.GetEditionsByIdentifier, vars, &data); err != nil {
			return nil, syncerrors.Remotef(err, "look up ISBN/ASIN %s", ref)
		}
		if len(data.Editions) == 0 {
			return nil, syncerrors.BookNotFoundf(
				"Unable to find a book edition on Hardcover.app with ISBN/ASIN <i>%s</i>. Please manually link book.",
				ref,
			)
		}
		return &data.Editions[0].Book, nil

	case ref.BookID != 0:
		var data hardcover.BooksData
		vars := hardcover.IdentityVars{BookID: ref.BookID, UserID: userID}
		if err := r.remote.Execute(ctx, hardcover.GetBook, vars, &data); err != nil {
			return nil, syncerrors.Remotef(err, "look up book %d", ref.BookID)
		}
		if len(data.Books) == 0 {
			return nil, syncerrors.BookNotFoundf(
				"Unable to find book id <i>%d</i> on Hardcover.app. Please manually un-link and re-link book.",
				ref.BookID,
			)
		}
		return &data.Books[0], nil

	default:
		return nil, syncerrors.InvalidInput("One of --content-id or --book-id is required")
	}
}

// editionCandidate extracts one candidate edition from a book, or nil.
type editionCandidate func(*domain.Book) *domain.Edition

// editionChain is the selection order: the edition the user already linked,
// the first identifier match, then the remote defaults.
var editionChain = []editionCandidate{
	func(b *domain.Book) *domain.Edition {
		if ub := b.UserBook(); ub != nil {
			return ub.Edition
		}
		return nil
	},
	func(b *domain.Book) *domain.Edition {
		if len(b.Editions) > 0 {
			return &b.Editions[0]
		}
		return nil
	},
	func(b *domain.Book) *domain.Edition { return b.DefaultEbookEdition },
	func(b *domain.Book) *domain.Edition { return b.DefaultCoverEdition },
}

func selectEdition(b *domain.Book) *domain.Edition {
	for _, candidate := range editionChain {
		if e := candidate(b); e != nil {
			return e
		}
	}
	return nil
}

// selectPages walks the same candidates independently, taking the first
// edition with a page count, and falls back to the book's own count.
// A zero count is treated as missing.
func selectPages(b *domain.Book) (int, bool) {
	for _, candidate := range editionChain {
		if e := candidate(b); e != nil && e.Pages != nil && *e.Pages > 0 {
			return *e.Pages, true
		}
	}
	if b.Pages != nil && *b.Pages > 0 {
		return *b.Pages, true
	}
	return 0, false
}
