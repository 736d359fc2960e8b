package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorgeai/leadflow/types"
)

func TestHTTPClient_AddTag(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL, APIKey: "secret"}, nil)
	require.NoError(t, c.AddTag(context.Background(), "c-1", "Hot-Lead"))

	assert.Equal(t, "POST /contacts/c-1/tags", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, []any{"Hot-Lead"}, gotBody["tags"])
}

func TestHTTPClient_RemoveTagAndWorkflow(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL}, nil)
	require.NoError(t, c.RemoveTag(context.Background(), "c-1", "Lead-Bot"))
	require.NoError(t, c.TriggerWorkflow(context.Background(), "c-1", "wf-9"))

	assert.Equal(t, []string{
		"DELETE /contacts/c-1/tags/Lead-Bot",
		"POST /contacts/c-1/workflow/wf-9",
	}, paths)
}

func TestHTTPClient_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL}, nil)
	err := c.AddTag(context.Background(), "c-1", "Hot-Lead")
	require.Error(t, err)
	assert.Equal(t, types.ErrEmitFailed, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestHTTPClient_ClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL}, nil)
	err := c.UpdateCustomField(context.Background(), "c-1", "frs", "72")
	require.Error(t, err)
	assert.False(t, types.IsRetryable(err))
}
