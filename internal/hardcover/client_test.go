package hardcover

import (
	"context"
	"encoding/json/v2"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		Endpoint:          server.URL + "/v1/graphql",
		Authorization:     "Bearer token",
		RequestsPerMinute: -1,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestClient_Execute_SendsOperation(t *testing.T) {
	var got struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	var headers http.Header

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/graphql", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Write([]byte(`{"data":{"books":[{"id":12,"pages":300}]}}`))
	})

	var out BooksData
	err := client.Execute(context.Background(), GetBook, IdentityVars{BookID: 12, UserID: 7}, &out)
	require.NoError(t, err)

	assert.Equal(t, "GetBook", got.OperationName)
	assert.Contains(t, got.Query, "fragment BookIdentity on books")
	assert.Equal(t, map[string]any{"book_id": float64(12), "user_id": float64(7)}, got.Variables)

	assert.Equal(t, "Bearer token", headers.Get("authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, defaultUserAgent, headers.Get("User-Agent"))

	require.Len(t, out.Books, 1)
	assert.Equal(t, 12, out.Books[0].ID)
	require.NotNil(t, out.Books[0].Pages)
	assert.Equal(t, 300, *out.Books[0].Pages)
}

func TestClient_Execute_OmitsEmptyVariables(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(`{"data":{"me":[{"id":7}]}}`))
	})

	var out UserIDData
	require.NoError(t, client.Execute(context.Background(), GetUserID, nil, &out))

	assert.NotContains(t, got, "variables")
	require.Len(t, out.Me, 1)
	assert.Equal(t, 7, out.Me[0].ID)
}

func TestClient_Execute_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMessages []string
		wantErr      error
		wantStatus   int
	}{
		{
			name:         "graphql errors",
			status:       http.StatusOK,
			body:         `{"errors":[{"message":"field 'x' not found"},{"message":"second"}]}`,
			wantMessages: []string{"field 'x' not found", "second"},
		},
		{
			name:         "graphql errors with failure status",
			status:       http.StatusBadRequest,
			body:         `{"errors":[{"message":"invalid input"}]}`,
			wantMessages: []string{"invalid input"},
			wantStatus:   http.StatusBadRequest,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `Unauthorized`,
			wantErr:    ErrUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "server error",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantErr:    ErrServer,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:    "null data",
			status:  http.StatusOK,
			body:    `{"data":null}`,
			wantErr: ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := client.Execute(context.Background(), GetUserID, nil, &UserIDData{})
			require.Error(t, err)

			var remote *RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, "GetUserId", remote.Op)
			assert.Equal(t, tt.wantStatus, remote.Status)
			if tt.wantMessages != nil {
				assert.Equal(t, tt.wantMessages, remote.Messages)
				assert.Equal(t, tt.wantMessages, Messages(err))
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClient_Execute_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Execute(ctx, GetUserID, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "not a url"}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestPayloadError(t *testing.T) {
	assert.NoError(t, PayloadError(InsertReadingJournal))
	assert.NoError(t, PayloadError(InsertReadingJournal, "", "  "))

	err := PayloadError(InsertReadingJournal, "", "entry is too long")
	require.Error(t, err)
	assert.Equal(t, "hardcover InsertReadingJournal: entry is too long", err.Error())
	assert.Equal(t, []string{"entry is too long"}, Messages(err))
}

func TestUserBookInput_MarshalsOnlySetFields(t *testing.T) {
	spoilers := false
	data, err := json.Marshal(UserBookInput{StatusID: 3, ReviewHasSpoilers: &spoilers})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status_id":3,"review_has_spoilers":false}`, string(data))

	assert.True(t, UserBookInput{}.Empty())
	assert.False(t, UserBookInput{ReviewHasSpoilers: &spoilers}.Empty())
}

func TestJournalInput_SendsNullActionAt(t *testing.T) {
	data, err := json.Marshal(JournalInput{
		BookID:    12,
		EditionID: 1,
		Event:     "quote",
		Entry:     "A passage",
		Metadata: JournalMetadata{Position: JournalPosition{
			Type: "pages", Value: 100, Possible: 250, Percent: 40,
		}},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"book_id": 12,
		"edition_id": 1,
		"event": "quote",
		"entry": "A passage",
		"action_at": null,
		"tags": [],
		"metadata": {"position": {"type": "pages", "value": 100, "possible": 250, "percent": 40}}
	}`, string(data))
}
