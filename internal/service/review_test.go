package service

import (
	"context"
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/hardcover-sync/internal/config"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
)

func TestReviewService_SetUserBook_RequiresStatusOrText(t *testing.T) {
	s := newServices(t, config.BookmarksAlways)

	_, err := s.reviews.SetUserBook(context.Background(), SetUserBookRequest{BookID: 10, Rating: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerrors.ErrInvalidInput)
	assert.Equal(t, "At least one of --status or --text is required", err.Error())

	_, err = s.reviews.SetUserBook(context.Background(), SetUserBookRequest{Status: 3})
	require.Error(t, err)
	assert.Equal(t, "One of --content-id or --book-id is required", err.Error())

	_, err = s.reviews.SetUserBook(context.Background(), SetUserBookRequest{BookID: 10, Status: 7})
	assert.ErrorIs(t, err, syncerrors.ErrInvalidInput)

	_, err = s.reviews.SetUserBook(context.Background(), SetUserBookRequest{BookID: 10, Status: 3, Rating: 5.5})
	assert.ErrorIs(t, err, syncerrors.ErrInvalidInput)

	assert.Empty(t, s.remote.Calls())
}

func TestReviewService_SetUserBook_Review(t *testing.T) {
	s := newServices(t, config.BookmarksAlways)
	s.remote.On(hardcover.GetUserID, userFixture)
	s.remote.On(hardcover.GetBook, trackedBookFixture)
	s.remote.On(hardcover.UpdateUserBook, `{"update_user_book": {"id": 500, "user_book": {"id": 500, "user_book_reads": []}}}`)

	req := SetUserBookRequest{
		BookID:   10,
		Status:   3,
		Rating:   5,
		Text:     ptr("Great book\r\n\r\nBetter ending"),
		Spoilers: ptr(true),
	}
	result, err := s.reviews.SetUserBook(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &SetUserBookResult{UserBookID: 500, Written: true}, result)

	calls := s.remote.CallsTo(hardcover.UpdateUserBook)
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"id": 500, "object": {
		"status_id": 3,
		"rating": 5,
		"review_has_spoilers": true,
		"reviewed_at": "2026-03-14",
		"review_slate": {"document": {"object": "document", "children": [
			{"object": "block", "type": "paragraph", "data": {}, "children": [{"object": "text", "text": "Great book"}]},
			{"object": "block", "type": "paragraph", "data": {}, "children": [{"object": "text", "text": "Better ending"}]}
		]}}
	}}`, string(calls[0].Variables))
}

func TestReviewService_SetUserBook_Unchanged(t *testing.T) {
	s := newServices(t, config.BookmarksAlways)
	s.remote.On(hardcover.GetUserID, userFixture)
	s.remote.On(hardcover.GetBook, trackedBookFixture)

	result, err := s.reviews.SetUserBook(context.Background(), SetUserBookRequest{BookID: 10, Status: 2, Text: ptr("Great book")})
	require.NoError(t, err)
	assert.False(t, result.Written)
	assert.Zero(t, s.remote.Count(hardcover.UpdateUserBook))
}

func TestReviewService_GetUserBook(t *testing.T) {
	s := newServices(t, config.BookmarksAlways)
	s.remote.On(hardcover.GetUserID, userFixture)
	s.remote.On(hardcover.GetBook, trackedBookFixture)

	view, err := s.reviews.GetUserBook(context.Background(), GetUserBookRequest{BookID: 10})
	require.NoError(t, err)
	require.NotNil(t, view)

	out, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"user_book_id": 500,
		"status_id": 2,
		"rating": 4.5,
		"review_has_spoilers": false,
		"review_text": "Great book",
		"reviewed_at": "2026-01-10",
		"sponsored_review": false
	}`, string(out))
}

func TestReviewService_GetUserBook_Untracked(t *testing.T) {
	s := newServices(t, config.BookmarksAlways)
	s.library.identifiers["book-1"] = []string{"9780000000001"}
	s.remote.On(hardcover.GetUserID, userFixture)
	s.remote.On(hardcover.GetEditionsByIdentifier, editionsFixture(`{"id": 10, "pages": null, "user_books": []}`))

	view, err := s.reviews.GetUserBook(context.Background(), GetUserBookRequest{ContentID: "book-1"})
	require.NoError(t, err, "page count and edition are not required")
	assert.Nil(t, view)
}

func TestReviewService_GetUserBook_NotFound(t *testing.T) {
	s := newServices(t, config.BookmarksAlways)
	s.remote.On(hardcover.GetUserID, userFixture)
	s.remote.On(hardcover.GetBook, `{"books": []}`)

	_, err := s.reviews.GetUserBook(context.Background(), GetUserBookRequest{BookID: 10})
	assert.ErrorIs(t, err, syncerrors.ErrBookNotFound)
}
