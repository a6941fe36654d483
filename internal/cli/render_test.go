package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/hardcover"
)

func TestErrorMessage(t *testing.T) {
	remote := &hardcover.RemoteError{Op: "InsertReadingJournal", Messages: []string{"first", "second"}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "coded",
			err:  syncerrors.BookNotFoundf("Unable to find book id <i>%d</i> on Hardcover.app", 10),
			want: "Unable to find book id <i>10</i> on Hardcover.app",
		},
		{
			name: "service messages on separate lines",
			err:  syncerrors.Remotef(remote, "insert note for book %d", 10),
			want: "insert note for book 10<br>first<br>second",
		},
		{
			name: "transport failure keeps the cause",
			err:  syncerrors.Remotef(&hardcover.RemoteError{Op: "GetBook", Status: 500, Err: hardcover.ErrServer}, "fetch book"),
			want: "fetch book: hardcover GetBook [500]: hardcover: server error",
		},
		{
			name: "uncoded",
			err:  errors.New("boom"),
			want: unexpectedPrefix + "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.err))
		})
	}
}

func TestRenderError_Text(t *testing.T) {
	err := syncerrors.Remotef(&hardcover.RemoteError{Messages: []string{"first", "second"}}, "sync bookmark")

	text := renderError(err, outputText)
	assert.NotContains(t, text, "<br>")
	assert.Contains(t, text, "sync bookmark")
	assert.Contains(t, text, "first")
	assert.Contains(t, text, "second")

	assert.Equal(t, "plain message", renderError(syncerrors.InvalidInput("plain message"), outputText))
	assert.Equal(t, "sync bookmark<br>first<br>second", renderError(err, outputHTML))
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", htmlToText(""))
	assert.Equal(t, "a < b", htmlToText("a < b"))

	text := htmlToText("Failed to select edition for book <i>10</i>")
	assert.NotContains(t, text, "<i>")
	assert.Contains(t, text, "10")
}
