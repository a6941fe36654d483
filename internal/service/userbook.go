package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/hardcover-sync/internal/domain"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
	"github.com/listenupapp/hardcover-sync/internal/slate"
)

// dateLayout is the calendar date format of started_at and reviewed_at.
const dateLayout = "2006-01-02"

// UserBookUpdate is the desired state of a user book. Nil fields are left
// untouched.
type UserBookUpdate struct {
	Status      *domain.Status
	Rating      *float64
	ReviewText  *string
	HasSpoilers *bool
	Sponsored   *bool
}

// UserBookResult describes the user book after a sync.
type UserBookResult struct {
	UserBookID int
	// Read is the latest user read, or nil when the user book has none.
	Read *domain.UserRead
	// Written reports whether a mutation was sent.
	Written bool
}

// ReadProgress is the state a user read is moved to.
type ReadProgress struct {
	EditionID     int
	ProgressPages int
}

// UserBookSynchronizer creates or updates a user's tracking record so that
// it matches a desired state with the fewest writes.
type UserBookSynchronizer struct {
	remote hardcover.Executor
	logger *slog.Logger
	now    func() time.Time
}

// NewUserBookSynchronizer creates a new user book synchronizer.
func NewUserBookSynchronizer(remote hardcover.Executor, logger *slog.Logger) *UserBookSynchronizer {
	return &UserBookSynchronizer{
		remote: remote,
		logger: logger,
		now:    time.Now,
	}
}

func (s *UserBookSynchronizer) today() string {
	return s.now().Format(dateLayout)
}

// Sync inserts the user book when the user does not track the book yet,
// otherwise sends only the fields that differ from the remote record.
func (s *UserBookSynchronizer) Sync(ctx context.Context, identity *Identity, update UserBookUpdate) (*UserBookResult, error) {
	if identity.UserBook == nil {
		return s.insert(ctx, identity, update)
	}

	existing := identity.UserBook
	result := &UserBookResult{
		UserBookID: existing.ID,
		Read:       existing.CurrentRead(),
	}

	input, err := s.diff(existing, update)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		s.logger.Debug("user book up to date", "user_book_id", existing.ID, "book_id", identity.BookID)
		return result, nil
	}

	s.logger.Info("updating user book",
		"user_book_id", existing.ID,
		"book_id", identity.BookID,
		"edition_id", identity.EditionID,
	)

	var data hardcover.UpdateUserBookData
	vars := hardcover.UpdateUserBookVars{ID: existing.ID, Object: input}
	if err := s.remote.Execute(ctx, hardcover.UpdateUserBook, vars, &data); err != nil {
		return nil, syncerrors.Remotef(err, "update user book %d for book %d, edition %d", existing.ID, identity.BookID, identity.EditionID)
	}
	if err := hardcover.PayloadError(hardcover.UpdateUserBook, data.UpdateUserBook.ErrorMessage()); err != nil {
		return nil, syncerrors.Remotef(err, "update user book %d for book %d, edition %d", existing.ID, identity.BookID, identity.EditionID)
	}

	apply(existing, input)
	if payload := data.UpdateUserBook; payload != nil && payload.UserBook != nil && len(payload.UserBook.Reads) > 0 {
		existing.Reads = payload.UserBook.Reads
		result.Read = existing.CurrentRead()
	}
	result.Written = true
	return result, nil
}

func (s *UserBookSynchronizer) insert(ctx context.Context, identity *Identity, update UserBookUpdate) (*UserBookResult, error) {
	status := domain.StatusCurrentlyReading
	if update.Status != nil {
		status = *update.Status
	}

	input := hardcover.UserBookInput{
		BookID:            identity.BookID,
		EditionID:         identity.EditionID,
		StatusID:          status,
		Rating:            ratingValue(update.Rating),
		ReviewHasSpoilers: update.HasSpoilers,
		SponsoredReview:   update.Sponsored,
	}
	if update.ReviewText != nil {
		review, err := slate.Marshal(*update.ReviewText)
		if err != nil {
			return nil, err
		}
		today := s.today()
		input.ReviewSlate = review
		input.ReviewedAt = &today
	}

	s.logger.Info("inserting user book",
		"book_id", identity.BookID,
		"edition_id", identity.EditionID,
		"status", status.String(),
	)

	var data hardcover.InsertUserBookData
	vars := hardcover.InsertUserBookVars{Object: input}
	if err := s.remote.Execute(ctx, hardcover.InsertUserBook, vars, &data); err != nil {
		return nil, syncerrors.Remotef(err, "insert user book for book %d, edition %d", identity.BookID, identity.EditionID)
	}
	if err := hardcover.PayloadError(hardcover.InsertUserBook, data.InsertUserBook.ErrorMessage()); err != nil {
		return nil, syncerrors.Remotef(err, "insert user book for book %d, edition %d", identity.BookID, identity.EditionID)
	}

	payload := data.InsertUserBook
	if payload == nil || payload.UserBook == nil {
		return nil, syncerrors.Remotef(hardcover.ErrNoData,
			"Failed to insert user book with book %d, edition %d, and status %d",
			identity.BookID, identity.EditionID, int(status),
		)
	}

	inserted := &domain.UserBook{
		ID:      payload.UserBook.ID,
		Edition: &domain.Edition{ID: identity.EditionID},
		Reads:   payload.UserBook.Reads,
	}
	apply(inserted, input)
	identity.UserBook = inserted

	return &UserBookResult{
		UserBookID: inserted.ID,
		Written:    true,
		Read:       inserted.CurrentRead(),
	}, nil
}

// apply folds a written input into the local copy of the user book.
func apply(ub *domain.UserBook, input hardcover.UserBookInput) {
	if input.StatusID != 0 {
		ub.Status = input.StatusID
	}
	if input.Rating != nil {
		rating := *input.Rating
		ub.Rating = &rating
	}
	if len(input.ReviewSlate) > 0 {
		ub.ReviewSlate = input.ReviewSlate.Clone()
	}
	if input.ReviewHasSpoilers != nil {
		ub.ReviewHasSpoilers = *input.ReviewHasSpoilers
	}
	if input.SponsoredReview != nil {
		ub.SponsoredReview = *input.SponsoredReview
	}
	if input.ReviewedAt != nil {
		reviewedAt := *input.ReviewedAt
		ub.ReviewedAt = &reviewedAt
	}
}

// diff returns an input holding only the fields of update that differ from
// the remote record. reviewed_at moves only with the review text.
func (s *UserBookSynchronizer) diff(existing *domain.UserBook, update UserBookUpdate) (hardcover.UserBookInput, error) {
	var input hardcover.UserBookInput

	if update.Status != nil && *update.Status != existing.Status {
		input.StatusID = *update.Status
	}

	if rating := ratingValue(update.Rating); rating != nil {
		if existing.Rating == nil || *existing.Rating != *rating {
			input.Rating = rating
		}
	}

	if update.HasSpoilers != nil && *update.HasSpoilers != existing.ReviewHasSpoilers {
		input.ReviewHasSpoilers = update.HasSpoilers
	}
	if update.Sponsored != nil && *update.Sponsored != existing.SponsoredReview {
		input.SponsoredReview = update.Sponsored
	}

	if update.ReviewText != nil && reviewChanged(existing.ReviewSlate, *update.ReviewText) {
		review, err := slate.Marshal(*update.ReviewText)
		if err != nil {
			return hardcover.UserBookInput{}, err
		}
		today := s.today()
		input.ReviewSlate = review
		input.ReviewedAt = &today
	}

	return input, nil
}

// reviewChanged compares reviews by their decoded text, so formatting
// differences of the stored document do not cause a write. A stored review
// that cannot be decoded counts as changed.
func reviewChanged(stored []byte, text string) bool {
	current, err := slate.Decode(stored)
	if err != nil {
		return true
	}
	wanted, err := slate.Decode(encodedReview(text))
	if err != nil {
		return true
	}
	return strings.TrimSpace(current) != strings.TrimSpace(wanted)
}

func encodedReview(text string) []byte {
	raw, err := slate.Marshal(text)
	if err != nil {
		return nil
	}
	return raw
}

// ratingValue maps a zero rating to "no rating".
func ratingValue(rating *float64) *float64 {
	if rating == nil || *rating == 0 {
		return nil
	}
	return rating
}

// EnsureRead returns the latest user read of the result, inserting one that
// starts today when the user book has none. The bool reports an insert.
func (s *UserBookSynchronizer) EnsureRead(ctx context.Context, result *UserBookResult, progress ReadProgress) (*domain.UserRead, bool, error) {
	if result.Read != nil {
		return result.Read, false, nil
	}

	pages := progress.ProgressPages
	vars := hardcover.InsertUserReadVars{
		UserBookID: result.UserBookID,
		Read: hardcover.UserReadInput{
			EditionID:     progress.EditionID,
			ProgressPages: &pages,
			StartedAt:     s.today(),
		},
	}

	s.logger.Info("inserting user read",
		"user_book_id", result.UserBookID,
		"edition_id", progress.EditionID,
		"progress_pages", pages,
	)

	var data hardcover.InsertUserReadData
	if err := s.remote.Execute(ctx, hardcover.InsertUserBookRead, vars, &data); err != nil {
		return nil, false, syncerrors.Remotef(err, "insert read for user book %d, edition %d", result.UserBookID, progress.EditionID)
	}
	if err := hardcover.PayloadError(hardcover.InsertUserBookRead, data.InsertUserBookRead.ErrorMessage()); err != nil {
		return nil, false, syncerrors.Remotef(err, "insert read for user book %d, edition %d", result.UserBookID, progress.EditionID)
	}

	payload := data.InsertUserBookRead
	if payload == nil || payload.UserBookRead == nil {
		return nil, false, syncerrors.Remotef(hardcover.ErrNoData, "Failed to find user read for user book %d", result.UserBookID)
	}

	result.Read = payload.UserBookRead
	return payload.UserBookRead, true, nil
}

// UpdateRead moves an existing read to the given progress. started_at is
// preserved, or set to today when the read has none.
func (s *UserBookSynchronizer) UpdateRead(ctx context.Context, read *domain.UserRead, progress ReadProgress) error {
	startedAt := s.today()
	if read.StartedAt != nil && *read.StartedAt != "" {
		startedAt = *read.StartedAt
	}

	pages := progress.ProgressPages
	vars := hardcover.UpdateUserReadVars{
		ID: read.ID,
		Object: hardcover.UserReadInput{
			EditionID:     progress.EditionID,
			ProgressPages: &pages,
			StartedAt:     startedAt,
		},
	}

	s.logger.Info("updating user read",
		"read_id", read.ID,
		"edition_id", progress.EditionID,
		"progress_pages", pages,
		"started_at", startedAt,
	)

	var data hardcover.UpdateUserReadData
	if err := s.remote.Execute(ctx, hardcover.UpdateUserBookRead, vars, &data); err != nil {
		return syncerrors.Remotef(err, "update read %d for edition %d", read.ID, progress.EditionID)
	}
	if err := hardcover.PayloadError(hardcover.UpdateUserBookRead, data.UpdateUserBookRead.ErrorMessage()); err != nil {
		return syncerrors.Remotef(err, "update read %d for edition %d", read.ID, progress.EditionID)
	}
	return nil
}
