package filter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikey/sms-risk-detector/internal/metrics"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHTTPFilter(t *testing.T) *HTTPFilter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	logger := zap.NewNop()
	return NewHTTPFilter(newTestService(t, recorder), utils.NewTextProcessor(logger), logger, "127.0.0.1:0", 65536, reg)
}

func do(t *testing.T, f *HTTPFilter, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.Handler().ServeHTTP(w, req)
	return w
}

func TestHTTPFilter_Predict(t *testing.T) {
	f := newTestHTTPFilter(t)

	w := do(t, f, http.MethodPost, "/api/v1/predict", `{"message":"click here to win free money"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "High Risk", resp["risk"])
	assert.GreaterOrEqual(t, resp["spam_probability"].(float64), 0.75)
	assert.Equal(t, "click here to win free money", resp["cleaned_text"])
	assert.Equal(t, "model", resp["source"])
	assert.NotEmpty(t, resp["bundle_id"])
}

func TestHTTPFilter_PredictRejectsBlank(t *testing.T) {
	f := newTestHTTPFilter(t)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`, `not json`} {
		w := do(t, f, http.MethodPost, "/api/v1/predict", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestHTTPFilter_ModelAndRetrain(t *testing.T) {
	f := newTestHTTPFilter(t)

	w := do(t, f, http.MethodGet, "/api/v1/model", "")
	require.Equal(t, http.StatusOK, w.Code)
	var before ModelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))
	assert.Equal(t, 20, before.Documents)
	assert.Equal(t, 10, before.SpamDocuments)
	assert.Positive(t, before.Features)

	w = do(t, f, http.MethodPost, "/api/v1/model/retrain", "")
	require.Equal(t, http.StatusOK, w.Code)
	var after ModelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.NotEqual(t, before.BundleID, after.BundleID)
	assert.Equal(t, before.Features, after.Features)
}

func TestHTTPFilter_HealthAndMetrics(t *testing.T) {
	f := newTestHTTPFilter(t)

	w := do(t, f, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	do(t, f, http.MethodPost, "/api/v1/predict", `{"message":"see you at dinner tonight"}`)

	w = do(t, f, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `risk_detector_verdicts_total{source="model",tier="Safe"} 1`)
}
