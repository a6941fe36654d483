package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/validation"
)

type testRequest struct {
	ContentID string   `flag:"content-id" validate:"required_without=BookID"`
	BookID    int64    `flag:"book-id"`
	Percent   int      `flag:"value" validate:"gte=0,lte=100"`
	Rating    *float64 `flag:"rating" validate:"omitempty,gte=0,lte=5"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	rating := 4.5
	err := v.Validate(testRequest{ContentID: "file:///mnt/onboard/book.epub", Percent: 40, Rating: &rating})
	assert.NoError(t, err)

	err = v.Validate(testRequest{BookID: 42, Percent: 100})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()
	tooHigh := 6.0

	tests := []struct {
		name      string
		req       testRequest
		wantField string
	}{
		{
			name:      "missing book reference",
			req:       testRequest{Percent: 10},
			wantField: "content-id",
		},
		{
			name:      "percent above 100",
			req:       testRequest{BookID: 1, Percent: 101},
			wantField: "value",
		},
		{
			name:      "rating above five",
			req:       testRequest{BookID: 1, Rating: &tooHigh},
			wantField: "rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			assert.ErrorIs(t, err, syncerrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), "--"+tt.wantField)

			var syncErr *syncerrors.Error
			require.ErrorAs(t, err, &syncErr)
			details, ok := syncErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}
