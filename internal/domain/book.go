// Package domain contains the Hardcover.app book model and the reading position math shared by the sync commands.
package domain

import (
	"encoding/json/jsontext"
	"strconv"
	"strings"
)

// Status is the reading state of a user book.
type Status int

// Hardcover.app status ids.
const (
	StatusWantToRead       Status = 1
	StatusCurrentlyReading Status = 2
	StatusRead             Status = 3
	StatusPaused           Status = 4
	StatusDidNotFinish     Status = 5
	StatusIgnored          Status = 6
)

// Valid reports whether s is a known status id.
func (s Status) Valid() bool {
	return s >= StatusWantToRead && s <= StatusIgnored
}

func (s Status) String() string {
	switch s {
	case StatusWantToRead:
		return "want to read"
	case StatusCurrentlyReading:
		return "currently reading"
	case StatusRead:
		return "read"
	case StatusPaused:
		return "paused"
	case StatusDidNotFinish:
		return "did not finish"
	case StatusIgnored:
		return "ignored"
	default:
		return "status " + strconv.Itoa(int(s))
	}
}

// BookReference points at a remote book either by industry identifiers
// (ISBN-10, ISBN-13, ASIN) or by Hardcover.app book id.
// Identifiers take priority when both are set.
type BookReference struct {
	Identifiers []string
	BookID      int
}

// ByIdentifiers reports whether the reference resolves through identifiers.
func (r BookReference) ByIdentifiers() bool {
	return len(r.Identifiers) > 0
}

// Empty reports whether the reference carries nothing to resolve.
func (r BookReference) Empty() bool {
	return !r.ByIdentifiers() && r.BookID == 0
}

func (r BookReference) String() string {
	if r.ByIdentifiers() {
		return strings.Join(r.Identifiers, ", ")
	}
	return strconv.Itoa(r.BookID)
}

// Edition is a published version of a book.
type Edition struct {
	ID    int  `json:"id"`
	Pages *int `json:"pages"`
}

// Book is the remote book record as returned by identity queries.
// UserBooks is filtered to the authenticated user, so it holds at most one entry.
type Book struct {
	ID                  int        `json:"id"`
	Pages               *int       `json:"pages"`
	Editions            []Edition  `json:"editions"`
	DefaultEbookEdition *Edition   `json:"default_ebook_edition"`
	DefaultCoverEdition *Edition   `json:"default_cover_edition"`
	UserBooks           []UserBook `json:"user_books"`
}

// UserBook returns the user's tracking record, or nil.
func (b *Book) UserBook() *UserBook {
	if len(b.UserBooks) == 0 {
		return nil
	}
	return &b.UserBooks[0]
}

// UserBook is a user's tracking record for a book.
type UserBook struct {
	ID     int      `json:"id"`
	Status Status   `json:"status_id"`
	Rating *float64 `json:"rating"`
	// ReviewSlate is the rich-text review document, kept raw until decoded.
	ReviewSlate       jsontext.Value `json:"review_slate"`
	ReviewHasSpoilers bool           `json:"review_has_spoilers"`
	SponsoredReview   bool           `json:"sponsored_review"`
	ReviewedAt        *string        `json:"reviewed_at"`
	Edition           *Edition       `json:"edition"`
	// Reads are ordered newest first.
	Reads []UserRead `json:"user_book_reads"`
}

// CurrentRead returns the most recent read, which is authoritative, or nil.
func (ub *UserBook) CurrentRead() *UserRead {
	if ub == nil || len(ub.Reads) == 0 {
		return nil
	}
	return &ub.Reads[0]
}

// UserRead is one reading attempt of a user book.
type UserRead struct {
	ID            int     `json:"id"`
	ProgressPages *int    `json:"progress_pages"`
	StartedAt     *string `json:"started_at"`
}
