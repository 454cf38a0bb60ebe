package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(Resolutions.WithLabelValues("projects", "stale"))
	RecordResolution("projects", "stale")
	assert.Equal(t, before+1, testutil.ToFloat64(Resolutions.WithLabelValues("projects", "stale")))

	before = testutil.ToFloat64(ProxyAttempts.WithLabelValues("allorigins", "win"))
	RecordProxyAttempt("allorigins", "win")
	assert.Equal(t, before+1, testutil.ToFloat64(ProxyAttempts.WithLabelValues("allorigins", "win")))
}

func TestHealthz(t *testing.T) {
	s := NewServer(func() any { return map[string]string{"projects": "fresh"} }, nil)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string            `json:"status"`
		Domains map[string]string `json:"domains"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "fresh", body.Domains["projects"])
}

func TestMetricsEndpoint(t *testing.T) {
	RecordCacheLookup("miss")

	s := NewServer(nil, nil)
	addr, _, err := s.Start("127.0.0.1:0")
	require.NoError(t, err)
	defer s.Stop(context.Background())

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "folio_cache_lookups_total")
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(nil, nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
