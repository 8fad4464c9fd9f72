package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBodyMarshalErrorSurfaces(t *testing.T) {
	called := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewRequest(http.DefaultClient, srv.URL).
		Post().
		JSONBody(map[string]any{"ch": make(chan int)}).
		Do(context.Background())

	require.Error(t, err)
	assert.False(t, called)
}

func TestJSONBodySetsContentType(t *testing.T) {
	var gotType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	res, err := NewRequest(http.DefaultClient, srv.URL).
		Post().
		JSONBody(map[string]string{"a": "b"}).
		Do(context.Background())

	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "application/json", gotType)
}
