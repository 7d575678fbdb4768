package appsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphgate/internal/apps"
	"graphgate/pkg/events"
	"graphgate/pkg/store"
)

const adminKey = "test-admin-key"

type nopSink struct{}

func (nopSink) Put(context.Context, string, string, string, []byte) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	gw := store.NewMemoryGateway(log)
	svc := apps.NewService(gw, events.NopEmitter{}, nopSink{}, log)
	app := New(log, svc, Config{AdminAPIKey: adminKey})
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, header map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

var asAdmin = map[string]string{"Authorization": "Bearer " + adminKey}

func TestCreateApplicationRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/applications", map[string]any{"label": "Acme"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/applications", map[string]any{"label": "Acme"},
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateApplicationValidatesBody(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/applications", map[string]any{"persistent": true}, asAdmin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApplicationTokenLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// Admin creates the application.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/applications",
		map[string]any{"label": "Acme", "persistent": true}, asAdmin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Key        string `json:"key"`
		Label      string `json:"label"`
		Persistent bool   `json:"persistent"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.Key)
	assert.Equal(t, "Acme", created.Label)
	assert.True(t, created.Persistent)

	appURL := srv.URL + "/api/applications/" + created.Key

	// Admin issues a token; the bearer key is only shown here.
	resp = doJSON(t, http.MethodPost, appURL+"/tokens", map[string]any{"name": "ci"}, asAdmin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var issued struct {
		Key            string `json:"key"`
		Name           string `json:"name"`
		Active         bool   `json:"active"`
		ApplicationKey string `json:"application_key"`
	}
	decode(t, resp, &issued)
	require.NotEmpty(t, issued.Key)
	assert.True(t, issued.Active)
	assert.Equal(t, created.Key, issued.ApplicationKey)

	// Listing never echoes the key back.
	resp = doJSON(t, http.MethodGet, appURL+"/tokens", nil, asAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Key)
	assert.Equal(t, "ci", listed[0].Name)

	// Admin writes config, then the token reads it back.
	resp = doJSON(t, http.MethodPut, appURL+"/config",
		map[string]any{"s3_host": "http://minio:9000", "s3_bucket_id": "acme", "export_frequency": "daily"}, asAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, appURL+"/config", nil,
		map[string]string{"X-API-Key": issued.Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg map[string]any
	decode(t, resp, &cfg)
	assert.Equal(t, "Acme", cfg["label"])
	assert.Equal(t, "http://minio:9000", cfg["s3_host"])
	assert.Equal(t, "acme", cfg["s3_bucket_id"])

	// Application authority does not reach the system-only listing.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/applications", nil,
		map[string]string{"X-API-Key": issued.Key})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Revoke, then the key stops authenticating.
	resp = doJSON(t, http.MethodDelete, appURL+"/tokens/ci", nil, asAdmin)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, appURL+"/config", nil,
		map[string]string{"X-API-Key": issued.Key})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownApplicationIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/applications/no-such-key/config", nil, asAdmin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/applications/no-such-key/tokens",
		map[string]any{"name": "ci"}, asAdmin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/applications",
		map[string]any{"label": "Acme"}, asAdmin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Key string `json:"key"`
	}
	decode(t, resp, &created)

	appURL := srv.URL + "/api/applications/" + created.Key
	resp = doJSON(t, http.MethodPut, appURL+"/config",
		map[string]any{"s3_host": "http://minio:9000", "s3_bucket_id": "acme"}, asAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, appURL+"/exports", nil, asAdmin)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var exported struct {
		ObjectID string `json:"object_id"`
	}
	decode(t, resp, &exported)
	assert.Equal(t, created.Key, exported.ObjectID)

	resp = doJSON(t, http.MethodGet, appURL+"/exports/"+exported.ObjectID, nil, asAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info map[string]any
	decode(t, resp, &info)
	assert.Equal(t, "http://minio:9000", info["s3_host"])
	assert.Equal(t, "acme", info["s3_bucket_id"])
	assert.Equal(t, created.Key, info["s3_object_id"])
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
