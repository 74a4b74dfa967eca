package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flames/compat"
	"flames/db"
)

const exampleJSON = `{"gender":"Male","met":"Met before","age":25,"attraction":8,"sincerity":7,
	"intelligence":9,"funny":6,"ambition":5,"interests":7,"overall":8,"reciprocate":6}`

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandlePredict(t *testing.T) {
	model := &fakeModel{label: 1}
	w := postJSON(newTestServer(t, model, nil), "/api/predict", exampleJSON)

	require.Equal(t, http.StatusOK, w.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, float64(1), payload["label"])
	assert.Equal(t, "💞 Couple is compatible!", payload["message"])
	assert.Equal(t, true, payload["celebrate"])
	assert.Equal(t, []any{1.0, 25.0, 8.0, 7.0, 9.0, 6.0, 5.0, 7.0, 8.0, 6.0, 1.0}, payload["features"])
	assert.NotContains(t, payload, "error")
}

func TestHandlePredictDefaults(t *testing.T) {
	model := &fakeModel{label: 0}
	w := postJSON(newTestServer(t, model, nil), "/api/predict", `{"gender":"Female","met":"Not met","age":30}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [][]float64{{0, 30, 5, 5, 5, 5, 5, 5, 5, 5, 0}}, model.rows)
	assert.Contains(t, w.Body.String(), "💔 Couple is not compatible.")
}

func TestHandlePredictFailure(t *testing.T) {
	w := postJSON(newTestServer(t, &fakeModel{err: errors.New("bad shape")}, nil), "/api/predict", exampleJSON)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var payload compat.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Error during prediction", payload.Message)
	assert.False(t, payload.Celebrate)
	assert.Nil(t, payload.Label)
	assert.Equal(t, "Prediction error: bad shape", payload.Error)
}

func TestHandlePredictBadRequest(t *testing.T) {
	model := &fakeModel{label: 1}
	handler := newTestServer(t, model, nil)

	w := postJSON(handler, "/api/predict", `{"gender":"Male","reciprocate":42}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var payload predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "must be at most 10", payload.Fields["reciprocate"])

	w = postJSON(handler, "/api/predict", `{"height":180}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = postJSON(handler, "/api/predict", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, model.rows)
}

func TestHandleFeatures(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/features", nil)
	w := httptest.NewRecorder()
	newTestServer(t, &fakeModel{}, nil).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		ModelType string           `json:"model_type"`
		Features  []compat.Feature `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "fake", payload.ModelType)
	require.Len(t, payload.Features, compat.NumFeatures)
	assert.Equal(t, "gender", payload.Features[0].Name)
	assert.Equal(t, "met", payload.Features[10].Name)
}

func TestHandleHistory(t *testing.T) {
	history := &fakeHistory{predictions: []db.Prediction{{
		ID:        "a",
		Label:     1,
		Message:   compat.CompatibleMessage,
		CreatedAt: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC),
	}}, counts: map[int]int{1: 3, 0: 2}}
	handler := newTestServer(t, &fakeModel{}, history)

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, history.limit)
	assert.Contains(t, w.Body.String(), `"id":"a"`)
	assert.Contains(t, w.Body.String(), `"compatible":3`)
	assert.Contains(t, w.Body.String(), `"not_compatible":2`)

	req = httptest.NewRequest(http.MethodGet, "/api/history?limit=0", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	history.err = errors.New("locked")
	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 20, history.limit)
}

func TestHandleHistoryDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	newTestServer(t, &fakeModel{}, nil).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, &fakeModel{label: 1}, nil)
	postJSON(handler, "/api/predict", exampleJSON)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `flames_predictor_predictions_total{outcome="compatible"}`)
}
