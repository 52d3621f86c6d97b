package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompteria-api/client"
	"prompteria-api/models"
)

func newAPI(t *testing.T, mux *http.ServeMux) *client.Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/", client.WithHTTPClient(srv.Client()), client.WithToken("tok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ToggleLikeSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /prompt/P/like", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.LikeResponse{Likes: []string{"u1", "u2"}, LikesCount: 2, HasLiked: true})
	})
	api := newAPI(t, mux)

	resp, err := api.ToggleLike(context.Background(), "P")

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, resp.Likes)
	assert.True(t, resp.HasLiked)
}

func TestClient_DecodesErrorBodies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /prompt/missing/view", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Prompt not found"})
	})
	mux.HandleFunc("POST /prompt/P/view", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to increment view", "details": "timeout"})
	})
	api := newAPI(t, mux)

	_, err := api.RecordView(context.Background(), "missing")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Prompt not found", apiErr.Message)

	_, err = api.RecordView(context.Background(), "P")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to increment view", apiErr.Message)
	assert.Equal(t, "timeout", apiErr.Details)
}

func TestClient_PageFuncsEncodeQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/u1/likes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, models.PromptPage{Pagination: models.Pagination{Page: 2, Limit: 12}})
	})
	mux.HandleFunc("GET /prompt", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go", r.URL.Query().Get("tag"))
		assert.Equal(t, "a b", r.URL.Query().Get("search"))
		writeJSON(w, http.StatusOK, models.PromptPage{})
	})
	api := newAPI(t, mux)

	page, err := api.UserLikes("u1")(context.Background(), 2, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Page)

	_, err = api.Feed("go", "a b")(context.Background(), 1, 12)
	require.NoError(t, err)
}

func TestClient_DeletePrompt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /prompt/P", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Prompt deleted successfully"})
	})
	api := newAPI(t, mux)

	assert.NoError(t, api.DeletePrompt(context.Background(), "P"))
	assert.Error(t, api.DeletePrompt(context.Background(), "other"))
}
