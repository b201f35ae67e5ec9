package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keepsake/internal/model"
)

func TestResource_CreateThenListIncludesServerID(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.server()
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")
	ctx := context.Background()

	created, err := res.Create(ctx, model.BucketItem{Text: "ride a hot air balloon"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	items, err := res.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "ride a hot air balloon", items[0].Text)
}

func TestResource_CreateRejectsInvalidBeforeNetwork(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.server()
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")

	_, err := res.Create(context.Background(), model.BucketItem{Text: "  "})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, backend.count(http.MethodPost, "bucket-items"))
}

func TestResource_UpdateUnknownIDIsNotFound(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.server()
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")

	_, err := res.Update(context.Background(), model.BucketItem{ID: "ghost", Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResource_DeleteIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	srv := backend.server()
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")
	ctx := context.Background()

	created, err := res.Create(ctx, model.BucketItem{Text: "x"})
	require.NoError(t, err)

	require.NoError(t, res.Delete(ctx, created.ID))
	// Already gone reads the same as successfully removed.
	require.NoError(t, res.Delete(ctx, created.ID))
}

func TestResource_StrictDecodeRejectsUnknownFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{
			"id": "1", "text": "x", "completed": false, "surprise": 42,
		}})
	}))
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")

	_, err := res.List(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBadShape)
}

func TestResource_ListRejectsInvalidRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "1", "text": ""}})
	}))
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")

	_, err := res.List(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBadShape)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []map[string]any{})
	}))
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, func() string { return "tok-123" }), "bucket-items")
	_, err := res.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got)
}

func TestClient_UnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "locked", http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := NewResource[model.BucketItem](NewClient(srv.URL, nil), "bucket-items")
	_, err := res.List(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
