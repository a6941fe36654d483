package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := BookNotFoundf("no edition with ISBN/ASIN <i>%s</i>", "9780000000001")

	assert.True(t, Is(err, ErrBookNotFound))
	assert.False(t, Is(err, ErrPageCountMissing))
	assert.Contains(t, err.Error(), "9780000000001")
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Remotef(cause, "insert user book for book %d", 42)

	assert.True(t, Is(err, ErrRemote))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert user book for book 42: connection reset", err.Error())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", InvalidInput("total word count must be positive"))

	assert.Equal(t, CodeInvalidInput, CodeOf(wrapped))
	assert.Equal(t, Code(""), CodeOf(fmt.Errorf("plain")))
}

func TestCode_ExitCode(t *testing.T) {
	assert.Equal(t, 2, CodeInvalidInput.ExitCode())
	assert.Equal(t, 2, CodeConfig.ExitCode())
	assert.Equal(t, 1, CodeRemote.ExitCode())
	assert.Equal(t, 1, CodeBookNotFound.ExitCode())
}
