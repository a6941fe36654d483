package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/listenupapp/hardcover-sync/internal/domain"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/slate"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

// ReviewService implements the user book commands: status, rating and review.
type ReviewService struct {
	library    IdentifierSource
	identities *IdentityResolver
	userBooks  *UserBookSynchronizer
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	library IdentifierSource,
	identities *IdentityResolver,
	userBooks *UserBookSynchronizer,
	validator *validation.Validator,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		library:    library,
		identities: identities,
		userBooks:  userBooks,
		validator:  validator,
		logger:     logger,
	}
}

// SetUserBookRequest changes a user book. Status 0 and rating 0 mean unset.
type SetUserBookRequest struct {
	ContentID string
	BookID    int     `flag:"book-id" validate:"gte=0"`
	Status    int     `flag:"status" validate:"gte=0,lte=6"`
	Rating    float64 `flag:"rating" validate:"gte=0,lte=5"`
	Text      *string
	Spoilers  *bool
	Sponsored *bool
}

// SetUserBookResult reports the user book after the change.
type SetUserBookResult struct {
	UserBookID int  `json:"user_book_id"`
	Written    bool `json:"written"`
}

// SetUserBook creates or updates the user book, writing only what changed.
func (s *ReviewService) SetUserBook(ctx context.Context, req SetUserBookRequest) (*SetUserBookResult, error) {
	if req.ContentID == "" && req.BookID == 0 {
		return nil, syncerrors.InvalidInput("One of --content-id or --book-id is required")
	}
	if req.Status == 0 && req.Text == nil {
		return nil, syncerrors.InvalidInput("At least one of --status or --text is required")
	}
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

	update := UserBookUpdate{
		ReviewText:  req.Text,
		HasSpoilers: req.Spoilers,
		Sponsored:   req.Sponsored,
	}
	if req.Status != 0 {
		status := domain.Status(req.Status)
		update.Status = &status
	}
	if req.Rating != 0 {
		rating := req.Rating
		update.Rating = &rating
	}

	result, err := s.userBooks.Sync(ctx, identity, update)
	if err != nil {
		return nil, err
	}
	return &SetUserBookResult{UserBookID: result.UserBookID, Written: result.Written}, nil
}

// GetUserBookRequest names the book to read back.
type GetUserBookRequest struct {
	ContentID string
	BookID    int `flag:"book-id" validate:"gte=0"`
}

// UserBookView is the user book with its review as plain text.
type UserBookView struct {
	UserBookID        int           `json:"user_book_id"`
	StatusID          domain.Status `json:"status_id"`
	Rating            *float64      `json:"rating"`
	ReviewHasSpoilers bool          `json:"review_has_spoilers"`
	ReviewText        string        `json:"review_text"`
	ReviewedAt        *string       `json:"reviewed_at"`
	SponsoredReview   bool          `json:"sponsored_review"`
}

// GetUserBook returns the user's record for the book, or nil when the book
// is not tracked. Edition and page count are not needed and not checked.
func (s *ReviewService) GetUserBook(ctx context.Context, req GetUserBookRequest) (*UserBookView, error) {
	if req.ContentID == "" && req.BookID == 0 {
		return nil, syncerrors.InvalidInput("One of --content-id or --book-id is required")
	}
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
	book, err := s.identities.Lookup(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	ub := book.UserBook()
	if ub == nil {
		s.logger.Debug("book not tracked", "book_id", book.ID)
		return nil, nil
	}

	text, err := slate.Decode(ub.ReviewSlate)
	if err != nil {
		return nil, err
	}

	return &UserBookView{
		UserBookID:        ub.ID,
		StatusID:          ub.Status,
		Rating:            ub.Rating,
		ReviewHasSpoilers: ub.ReviewHasSpoilers,
		ReviewText:        strings.TrimSpace(text),
		ReviewedAt:        ub.ReviewedAt,
		SponsoredReview:   ub.SponsoredReview,
	}, nil
}
