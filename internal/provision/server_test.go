package provision

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
	"github.com/witnessmenow/bridge-traffic-display/internal/monitor"
)

type fixedStatus struct {
	status monitor.Status
}

func (f *fixedStatus) Status() monitor.Status { return f.status }

func newTestServer(t *testing.T) (*Server, *models.DeviceConfigStore, *int) {
	t.Helper()

	store := models.NewDeviceConfigStore(filepath.Join(t.TempDir(), "bridge_config.json"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	saves := 0

	status := &fixedStatus{status: monitor.Status{State: "idle", Color: "green"}}
	server := NewServer(logger, store, status, nil, nil, func() { saves++ })
	return server, store, &saves
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSaveConfigPersistsCredential(t *testing.T) {
	server, store, saves := newTestServer(t)

	rec := postJSON(t, server.Routes(), "/api/config", `{"api_key": "AIzaSyNewKey"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AIzaSyNewKey", store.APIKey())
	assert.Equal(t, 1, *saves)
}

func TestSaveConfigAcceptsFormEncoding(t *testing.T) {
	server, store, _ := newTestServer(t)

	form := url.Values{"api_key": {"form-key"}}
	req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "form-key", store.APIKey())
}

func TestSaveConfigRejectsEmptyKey(t *testing.T) {
	server, store, saves := newTestServer(t)

	rec := postJSON(t, server.Routes(), "/api/config", `{"api_key": "   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "", store.APIKey())
	assert.Zero(t, *saves)

	resp := decodeResponse(t, rec)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Text, "api_key")
}

func TestSaveConfigRejectsMalformedBody(t *testing.T) {
	server, _, _ := newTestServer(t)

	rec := postJSON(t, server.Routes(), "/api/config", `{"api_key":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusEndpointReportsMonitor(t *testing.T) {
	server, store, _ := newTestServer(t)
	require.NoError(t, store.Save(models.DeviceConfig{APIKey: "k"}))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "OK", resp.Text)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["provisioned"])

	mon, ok := data["monitor"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "green", mon["color"])
	assert.Equal(t, "idle", mon["state"])
}

func TestSetupPageServesForm(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="api_key"`)
	assert.Contains(t, rec.Body.String(), "No credential saved yet")
}
