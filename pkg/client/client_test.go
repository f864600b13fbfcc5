package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	c, err := New("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cables", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "active,deleted", r.URL.Query().Get("status"))
		assert.Equal(t, "name|dsc", r.URL.Query().Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":[{"id":7}],"meta":{"current_page":2,"per_page":15,"total":16,"last_page":2,"from":16,"to":16}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	env, err := c.List(context.Background(), "cables", Query{
		Page:   2,
		Sort:   "name|dsc",
		Status: []string{"active", "deleted"},
	})
	require.NoError(t, err)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(16), env.Meta.Total)

	var items []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Equal(t, uint(7), items[0].ID)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/distribution-points":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":422,"message":"link already taken","field_errors":{"core_id":"taken"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Create(context.Background(), "distribution-points", map[string]interface{}{"core_id": 1})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "taken", apiErr.FieldErrors["core_id"])

	_, err = c.Restore(context.Background(), "cables", 1)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_Bulk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Action string `json:"action"`
			IDs    []uint `json:"ids"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "restore", req.Action)

		_, _ = w.Write([]byte(`{"status":"success","data":{"action":"restore","processed":[5],"skipped":[6]},"message":"1 cables processed, 1 skipped"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	res, err := c.Bulk(context.Background(), "cables", "restore", []uint{5, 6})
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, res.Processed)
	assert.Equal(t, []uint{6}, res.Skipped)
}
