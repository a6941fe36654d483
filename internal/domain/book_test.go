package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookReference(t *testing.T) {
	byISBN := BookReference{Identifiers: []string{"9780000000001", "0000000001"}, BookID: 12}
	assert.True(t, byISBN.ByIdentifiers())
	assert.False(t, byISBN.Empty())
	assert.Equal(t, "9780000000001, 0000000001", byISBN.String())

	byID := BookReference{BookID: 12}
	assert.False(t, byID.ByIdentifiers())
	assert.Equal(t, "12", byID.String())

	assert.True(t, BookReference{}.Empty())
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusCurrentlyReading.Valid())
	assert.True(t, StatusIgnored.Valid())
	assert.False(t, Status(0).Valid())
	assert.False(t, Status(7).Valid())

	assert.Equal(t, "currently reading", StatusCurrentlyReading.String())
	assert.Equal(t, "status 9", Status(9).String())
}

func TestBook_DecodesRemoteShape(t *testing.T) {
	raw := `{
		"id": 12,
		"pages": null,
		"editions": [{"id": 2, "pages": 300}],
		"default_ebook_edition": {"id": 3, "pages": null},
		"default_cover_edition": null,
		"user_books": [{
			"id": 40,
			"status_id": 2,
			"rating": 4.5,
			"review_slate": null,
			"review_has_spoilers": false,
			"sponsored_review": false,
			"reviewed_at": null,
			"edition": {"id": 1, "pages": 250},
			"user_book_reads": [
				{"id": 9, "progress_pages": 120, "started_at": "2026-01-02"},
				{"id": 8, "progress_pages": 300, "started_at": "2025-03-01"}
			]
		}]
	}`

	var book Book
	require.NoError(t, json.Unmarshal([]byte(raw), &book))

	assert.Equal(t, 12, book.ID)
	assert.Nil(t, book.Pages)
	assert.Nil(t, book.DefaultCoverEdition)
	require.NotNil(t, book.DefaultEbookEdition)
	assert.Nil(t, book.DefaultEbookEdition.Pages)

	ub := book.UserBook()
	require.NotNil(t, ub)
	assert.Equal(t, StatusCurrentlyReading, ub.Status)
	require.NotNil(t, ub.Rating)
	assert.InDelta(t, 4.5, *ub.Rating, 1e-9)

	read := ub.CurrentRead()
	require.NotNil(t, read)
	assert.Equal(t, 9, read.ID)
	require.NotNil(t, read.StartedAt)
	assert.Equal(t, "2026-01-02", *read.StartedAt)
}

func TestUserBook_CurrentReadEmpty(t *testing.T) {
	var nilBook *UserBook
	assert.Nil(t, nilBook.CurrentRead())
	assert.Nil(t, (&UserBook{}).CurrentRead())
	assert.Nil(t, (&Book{}).UserBook())
}
