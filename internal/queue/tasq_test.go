package queue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasqInsert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "wowzers", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"payload":{"key":"test:wowzers"},"message":""}`))
	}))
	defer srv.Close()

	tasq := NewTasq(srv.URL, nil)
	key, err := tasq.Insert(context.Background(), "wowzers")
	require.NoError(t, err)
	assert.Equal(t, "test:wowzers", key)
}

func TestTasqList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"payload":{"tasks":["test:wowzers"],"count":1},"message":""}`))
	}))
	defer srv.Close()

	tasq := NewTasq(srv.URL, nil)
	tasks, count, err := tasq.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"test:wowzers"}, tasks)
	assert.Equal(t, 1, count)
}

func TestTasqConsume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"payload":{"key":"test:wowzers","data":"wowzers"},"message":""}`))
	}))
	defer srv.Close()

	tasq := NewTasq(srv.URL, nil)
	task, err := tasq.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test:wowzers", task.Key)
	assert.Equal(t, "wowzers", task.Data)
}

func TestTasqConsumeEmpty(t *testing.T) {
	t.Run("envelope message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":false,"payload":null,"message":"list is empty"}`))
		}))
		defer srv.Close()

		tasq := NewTasq(srv.URL, nil)
		_, err := tasq.Consume(context.Background())
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("404", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		tasq := NewTasq(srv.URL, nil)
		_, err := tasq.Consume(context.Background())
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestTasqError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"payload":null,"message":"internal error"}`))
	}))
	defer srv.Close()

	tasq := NewTasq(srv.URL, nil)
	_, err := tasq.Consume(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmpty)
	assert.Contains(t, err.Error(), "internal error")
}
