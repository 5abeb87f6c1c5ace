package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/archivebot/internal/model"
)

func TestIsArchived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("v") {
		case "123":
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":1}}}`))
		default:
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":0}}}`))
		}
	}))
	defer srv.Close()

	ragtag, err := NewRagtag(srv.URL+"/", nil)
	require.NoError(t, err)

	archived, err := ragtag.IsArchived(context.Background(), "123")
	require.NoError(t, err)
	assert.True(t, archived, "命中数 > 0 应视为已归档")

	archived, err = ragtag.IsArchived(context.Background(), "456")
	require.NoError(t, err)
	assert.False(t, archived)
}

func TestArchive(t *testing.T) {
	var got model.Metadata
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/archive/abc123", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ragtag, err := NewRagtag(srv.URL+"/", nil)
	require.NoError(t, err)

	meta := &model.Metadata{VideoID: "abc123", Title: "title"}
	require.NoError(t, ragtag.Archive(context.Background(), "abc123", meta))
	assert.Equal(t, "abc123", got.VideoID)
	assert.Equal(t, "title", got.Title)
}

func TestArchiveConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	ragtag, err := NewRagtag(srv.URL+"/", nil)
	require.NoError(t, err)

	err = ragtag.Archive(context.Background(), "abc123", &model.Metadata{VideoID: "abc123"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestIsArchivedHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ragtag, err := NewRagtag(srv.URL+"/", nil)
	require.NoError(t, err)

	_, err = ragtag.IsArchived(context.Background(), "123")
	assert.Error(t, err)
}
