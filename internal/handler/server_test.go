package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mparedes/draftroom/internal/domain"
	"github.com/mparedes/draftroom/internal/handler"
	"github.com/mparedes/draftroom/internal/realtime"
	"github.com/mparedes/draftroom/internal/session"
)

// newTestServer wires a real manager over the in-memory channel, no store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := session.NewManager(realtime.NewMemory(), nil, log)
	srv := httptest.NewServer(handler.NewServer(manager, log).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// errorBody mirrors the handler's error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ---- health ----------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, resp))
}

// ---- draft lifecycle -------------------------------------------------------

func TestCreateDraft_generatesID(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/drafts", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	d := decodeBody[domain.Draft](t, resp)
	assert.NotEmpty(t, d.ID)
	assert.Empty(t, d.Stops)
	assert.False(t, d.IsLocked)
}

func TestCreateDraft_explicitID(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/drafts", map[string]string{"id": "friday-night"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "friday-night", decodeBody[domain.Draft](t, resp).ID)
}

func TestCreateDraft_malformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/drafts", "application/json", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDraft_resumesSession(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/drafts", map[string]string{"id": "d1"})
	joinAndAddStop(t, srv.URL, "d1")

	resp := doJSON(t, http.MethodGet, srv.URL+"/drafts/d1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[domain.Draft](t, resp).Stops, 1)
}

func TestDeleteDraft(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/drafts", map[string]string{"id": "d1"})

	resp := doJSON(t, http.MethodDelete, srv.URL+"/drafts/d1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSaveDraft_noStoreIsNoOp(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/drafts", map[string]string{"id": "d1"})

	resp := doJSON(t, http.MethodPost, srv.URL+"/drafts/d1/save", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// joinAndAddStop joins u1 as host and adds one stop through the command
// endpoint, returning the new stop id.
func joinAndAddStop(t *testing.T, baseURL, draftID string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/drafts/"+draftID+"/commands", map[string]any{
		"op": "join",
		"participant": map[string]string{
			"userId": "u1", "name": "Maya", "role": "host",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, baseURL+"/drafts/"+draftID+"/commands", map[string]any{
		"op": "add_stop", "userId": "u1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		StopID string `json:"stopId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.StopID)
	return out.StopID
}
