package hardcover

import (
	"encoding/json/jsontext"

	"github.com/listenupapp/hardcover-sync/internal/domain"
)

// Variables and response data of the operations in operations.go.

// UserIDData is the data of GetUserID.
type UserIDData struct {
	Me []struct {
		ID int `json:"id"`
	} `json:"me"`
}

// IdentityVars are the variables of GetEditionsByIdentifier and GetBook.
type IdentityVars struct {
	Identifiers []string `json:"identifiers,omitzero"`
	BookID      int      `json:"book_id,omitzero"`
	UserID      int      `json:"user_id"`
}

// EditionsData is the data of GetEditionsByIdentifier.
type EditionsData struct {
	Editions []struct {
		Book domain.Book `json:"book"`
	} `json:"editions"`
}

// BooksData is the data of GetBook.
type BooksData struct {
	Books []domain.Book `json:"books"`
}

// UserBookInput is the object of InsertUserBook and UpdateUserBook.
// Nil fields are not sent.
type UserBookInput struct {
	BookID            int            `json:"book_id,omitzero"`
	EditionID         int            `json:"edition_id,omitzero"`
	StatusID          domain.Status  `json:"status_id,omitzero"`
	Rating            *float64       `json:"rating,omitzero"`
	ReviewSlate       jsontext.Value `json:"review_slate,omitzero"`
	ReviewHasSpoilers *bool          `json:"review_has_spoilers,omitzero"`
	SponsoredReview   *bool          `json:"sponsored_review,omitzero"`
	ReviewedAt        *string        `json:"reviewed_at,omitzero"`
}

// Empty reports whether the input changes nothing.
func (in UserBookInput) Empty() bool {
	return in.BookID == 0 && in.EditionID == 0 && in.StatusID == 0 &&
		in.Rating == nil && len(in.ReviewSlate) == 0 &&
		in.ReviewHasSpoilers == nil && in.SponsoredReview == nil && in.ReviewedAt == nil
}

// InsertUserBookVars are the variables of InsertUserBook.
type InsertUserBookVars struct {
	Object UserBookInput `json:"object"`
}

// UpdateUserBookVars are the variables of UpdateUserBook.
type UpdateUserBookVars struct {
	ID     int           `json:"id"`
	Object UserBookInput `json:"object"`
}

// UserBookPayload is the result of a user book mutation.
type UserBookPayload struct {
	Error    *string `json:"error"`
	ID       *int    `json:"id"`
	UserBook *struct {
		ID    int               `json:"id"`
		Reads []domain.UserRead `json:"user_book_reads"`
	} `json:"user_book"`
}

// ErrorMessage returns the payload error, or "".
func (p *UserBookPayload) ErrorMessage() string {
	if p == nil || p.Error == nil {
		return ""
	}
	return *p.Error
}

// InsertUserBookData is the data of InsertUserBook.
type InsertUserBookData struct {
	InsertUserBook *UserBookPayload `json:"insert_user_book"`
}

// UpdateUserBookData is the data of UpdateUserBook.
type UpdateUserBookData struct {
	UpdateUserBook *UserBookPayload `json:"update_user_book"`
}

// UserReadInput is the read object of InsertUserBookRead and UpdateUserBookRead.
type UserReadInput struct {
	EditionID     int    `json:"edition_id,omitzero"`
	ProgressPages *int   `json:"progress_pages,omitzero"`
	StartedAt     string `json:"started_at,omitzero"`
}

// InsertUserReadVars are the variables of InsertUserBookRead.
type InsertUserReadVars struct {
	UserBookID int           `json:"user_book_id"`
	Read       UserReadInput `json:"user_book_read"`
}

// UpdateUserReadVars are the variables of UpdateUserBookRead.
type UpdateUserReadVars struct {
	ID     int           `json:"id"`
	Object UserReadInput `json:"object"`
}

// UserReadPayload is the result of a user read mutation.
type UserReadPayload struct {
	Error        *string          `json:"error"`
	ID           *int             `json:"id"`
	UserBookRead *domain.UserRead `json:"user_book_read"`
}

// ErrorMessage returns the payload error, or "".
func (p *UserReadPayload) ErrorMessage() string {
	if p == nil || p.Error == nil {
		return ""
	}
	return *p.Error
}

// InsertUserReadData is the data of InsertUserBookRead.
type InsertUserReadData struct {
	InsertUserBookRead *UserReadPayload `json:"insert_user_book_read"`
}

// UpdateUserReadData is the data of UpdateUserBookRead.
type UpdateUserReadData struct {
	UpdateUserBookRead *UserReadPayload `json:"update_user_book_read"`
}

// GetJournalVars are the variables of GetJournal.
type GetJournalVars struct {
	UserID   int    `json:"user_id"`
	BookID   int    `json:"book_id"`
	ActionAt string `json:"action_at"`
}

// ListJournalVars are the variables of ListJournal.
type ListJournalVars struct {
	UserID int `json:"user_id"`
	BookID int `json:"book_id"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// JournalRecord is a reading journal row as returned by the API.
type JournalRecord struct {
	ID       int            `json:"id"`
	Event    *string        `json:"event"`
	Entry    *string        `json:"entry"`
	ActionAt *string        `json:"action_at"`
	Metadata jsontext.Value `json:"metadata"`
}

// JournalsData is the data of GetJournal and ListJournal.
type JournalsData struct {
	ReadingJournals []JournalRecord `json:"reading_journals"`
}

// JournalPosition is the page position stored in journal metadata.
type JournalPosition struct {
	Type     string  `json:"type"`
	Value    int     `json:"value"`
	Possible int     `json:"possible"`
	Percent  float64 `json:"percent"`
}

// JournalMetadata is the metadata object of a journal entry.
type JournalMetadata struct {
	Position JournalPosition `json:"position"`
}

// JournalInput is the object of InsertReadingJournal.
// ActionAt is sent as null when unset.
type JournalInput struct {
	BookID    int             `json:"book_id"`
	EditionID int             `json:"edition_id"`
	Event     string          `json:"event"`
	Entry     string          `json:"entry"`
	ActionAt  *string         `json:"action_at"`
	Tags      []string        `json:"tags"`
	Metadata  JournalMetadata `json:"metadata"`
}

// InsertJournalVars are the variables of InsertReadingJournal.
type InsertJournalVars struct {
	Object JournalInput `json:"object"`
}

// JournalUpdateInput is the object of UpdateReadingJournal.
type JournalUpdateInput struct {
	Entry string `json:"entry"`
}

// UpdateJournalVars are the variables of UpdateReadingJournal.
type UpdateJournalVars struct {
	ID     int                `json:"id"`
	Object JournalUpdateInput `json:"object"`
}

// JournalPayload is the result of a journal mutation.
type JournalPayload struct {
	Errors []string `json:"errors"`
	ID     *int     `json:"id"`
}

// InsertJournalData is the data of InsertReadingJournal.
type InsertJournalData struct {
	InsertReadingJournal *JournalPayload `json:"insert_reading_journal"`
}

// UpdateJournalData is the data of UpdateReadingJournal.
type UpdateJournalData struct {
	UpdateReadingJournal *JournalPayload `json:"update_reading_journal"`
}

// SearchVars are the variables of SearchBooks.
type SearchVars struct {
	Query   string `json:"query"`
	PerPage int    `json:"per_page"`
	Page    int    `json:"page"`
}

// SearchData is the data of SearchBooks. Results is the raw search engine
// document, decoded by the caller.
type SearchData struct {
	Search *struct {
		Results jsontext.Value `json:"results"`
	} `json:"search"`
}
