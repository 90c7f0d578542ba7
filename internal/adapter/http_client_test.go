package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iplaycheck/go-punch-clock/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subject claim "worker-1", unsigned test token
const testToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ3b3JrZXItMSJ9.signature"

func newTestGateway(t *testing.T, serverURL string) *httpRemoteGateway {
	t.Helper()
	g := NewHTTPRemoteGateway(HTTPGatewayConfig{
		BaseURL: serverURL,
		Token:   testToken,
		Timeout: 5 * time.Second,
	})
	return g.(*httpRemoteGateway)
}

// ── Token handling ──────────────────────────────────────────────────────────

func TestSetToken_TrimsWhitespace(t *testing.T) {
	g := newTestGateway(t, "http://localhost")
	g.SetToken("  abc  ")
	assert.Equal(t, "abc", g.Token())
}

func TestUserID_FromSubjectClaim(t *testing.T) {
	g := newTestGateway(t, "http://localhost")
	assert.Equal(t, "worker-1", g.UserID())
}

func TestUserID_EmptyWhenTokenIsNotJWT(t *testing.T) {
	g := newTestGateway(t, "http://localhost")
	g.SetToken("not-a-jwt")
	assert.Empty(t, g.UserID())
}

// ── CreateRecord ────────────────────────────────────────────────────────────

func TestCreateRecord_Success(t *testing.T) {
	record := models.PunchRecord{
		ID:        "local-1",
		UserID:    "worker-1",
		Type:      models.PunchIn,
		Timestamp: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/records/", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		var got models.RemoteRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "local-1", got.ClientID)
		assert.Equal(t, "worker-1", got.UserID)
		assert.Equal(t, models.PunchIn, got.Type)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"remote-42"}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	id, err := g.CreateRecord(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, "remote-42", id)
}

func TestCreateRecord_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.CreateRecord(context.Background(), models.PunchRecord{ID: "local-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateRecord_BadRequestIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("missing timestamp"))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.CreateRecord(context.Background(), models.PunchRecord{ID: "local-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "missing timestamp")
}

func TestCreateRecord_ServerDownIsNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.CreateRecord(context.Background(), models.PunchRecord{ID: "local-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
}

func TestCreateRecord_EmptyIDIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.CreateRecord(context.Background(), models.PunchRecord{ID: "local-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
}

// ── QueryRecords ────────────────────────────────────────────────────────────

func TestQueryRecords_Success(t *testing.T) {
	want := []models.RemoteRecord{
		{ID: "r-2", UserID: "worker-1", Type: models.PunchOut, Timestamp: time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)},
		{ID: "r-1", UserID: "worker-1", Type: models.PunchIn, Timestamp: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/records/", r.URL.Path)
		assert.Equal(t, "worker-1", r.URL.Query().Get("userId"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	got, err := g.QueryRecords(context.Background(), models.QueryFilter{UserID: "worker-1", Limit: 50})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r-2", got[0].ID)
	assert.Equal(t, "r-1", got[1].ID)
}

func TestQueryRecords_EmptyFilterOmitsParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("userId"))
		assert.False(t, r.URL.Query().Has("limit"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	got, err := g.QueryRecords(context.Background(), models.QueryFilter{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

// ── UpdateRecord / DeleteRecord ─────────────────────────────────────────────

func TestUpdateRecord_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/records/r-1", r.URL.Path)

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, "https://img.example/p.jpg", patch["photo"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	err := g.UpdateRecord(context.Background(), "r-1", map[string]any{"photo": "https://img.example/p.jpg"})

	require.NoError(t, err)
}

func TestDeleteRecord_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/records/r-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	err := g.DeleteRecord(context.Background(), "r-1")

	require.NoError(t, err)
}

func TestDeleteRecord_NotFoundIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	err := g.DeleteRecord(context.Background(), "r-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
}

// ── UploadMedia ─────────────────────────────────────────────────────────────

func TestUploadMedia_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1/upload", r.URL.Path)
		assert.Equal(t, "media-key", r.URL.Query().Get("key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "aGVsbG8=", r.PostFormValue("image"))
		assert.Equal(t, "punch_local-1", r.PostFormValue("name"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"url":"https://img.example/abc.jpg"},"success":true}`))
	}))
	defer srv.Close()

	g := NewHTTPRemoteGateway(HTTPGatewayConfig{
		BaseURL:      "http://localhost",
		MediaBaseURL: srv.URL,
		MediaAPIKey:  "media-key",
	})

	url, err := g.UploadMedia(context.Background(), "data:image/jpeg;base64,aGVsbG8=", "punch_local-1")

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/abc.jpg", url)
}

func TestUploadMedia_ServerErrorIsMediaUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewHTTPRemoteGateway(HTTPGatewayConfig{BaseURL: "http://localhost", MediaBaseURL: srv.URL})

	_, err := g.UploadMedia(context.Background(), "data:image/jpeg;base64,aGVsbG8=", "p")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMediaUpload)
}

func TestUploadMedia_NoMediaHostConfigured(t *testing.T) {
	g := NewHTTPRemoteGateway(HTTPGatewayConfig{BaseURL: "http://localhost"})

	_, err := g.UploadMedia(context.Background(), "data:image/jpeg;base64,aGVsbG8=", "p")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMediaUpload)
}

func TestUploadMedia_RejectsPlainURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("media host should not be called")
	}))
	defer srv.Close()

	g := NewHTTPRemoteGateway(HTTPGatewayConfig{BaseURL: "http://localhost", MediaBaseURL: srv.URL})

	_, err := g.UploadMedia(context.Background(), "https://img.example/already-hosted.jpg", "p")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMediaUpload)
}

// ── stripDataURIPrefix ──────────────────────────────────────────────────────

func TestStripDataURIPrefix(t *testing.T) {
	got, err := stripDataURIPrefix("data:image/png;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "QUJD", got)

	_, err = stripDataURIPrefix("data:image/png;base64")
	assert.Error(t, err)

	_, err = stripDataURIPrefix("plain text")
	assert.Error(t, err)
}
