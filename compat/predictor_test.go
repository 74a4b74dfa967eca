package compat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flames/logger"
	"flames/ml"
)

type fakeModel struct {
	labels   []int
	err      error
	panics   bool
	features int
	rows     [][]float64
}

func (f *fakeModel) Predict(rows [][]float64) ([]int, error) {
	f.rows = append(f.rows, rows...)
	if f.panics {
		panic("index out of range")
	}
	return f.labels, f.err
}

func (f *fakeModel) NumFeatures() int { return f.features }
func (f *fakeModel) Type() string     { return "fake" }

type fakeRecorder struct {
	verdicts []Verdict
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, verdict Verdict) error {
	f.verdicts = append(f.verdicts, verdict)
	return f.err
}

func TestPredictPassesOrderedRow(t *testing.T) {
	model := &fakeModel{labels: []int{1}, features: NumFeatures}
	predictor, err := NewPredictor(model)
	require.NoError(t, err)

	verdict, err := predictor.PredictAnswers(context.Background(), exampleAnswers())
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 25, 8, 7, 9, 6, 5, 7, 8, 6, 1}}, model.rows)
	assert.Equal(t, 1, verdict.Label)
	assert.Equal(t, "💞 Couple is compatible!", verdict.Message)
	assert.False(t, verdict.Cached)
}

func TestPredictLabels(t *testing.T) {
	predictor, err := NewPredictor(&fakeModel{labels: []int{0}})
	require.NoError(t, err)

	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues(outcomeNotCompatible))
	verdict, err := predictor.Predict(context.Background(), exampleAnswers().Vector())
	require.NoError(t, err)
	assert.Equal(t, "💔 Couple is not compatible.", verdict.Message)
	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues(outcomeNotCompatible)))
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"model error", &fakeModel{err: errors.New("bad input")}},
		{"wrong label count", &fakeModel{labels: []int{1, 0}}},
		{"no labels", &fakeModel{}},
		{"panic", &fakeModel{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			predictor, err := NewPredictor(tt.model, WithRecorder(recorder))
			require.NoError(t, err)

			verdict, err := predictor.Predict(context.Background(), exampleAnswers().Vector())
			var predictionErr *PredictionError
			require.ErrorAs(t, err, &predictionErr)
			assert.Empty(t, recorder.verdicts)

			result, err := Present(verdict, err)
			require.NoError(t, err)
			assert.Equal(t, "Error during prediction", result.Message)
			assert.False(t, result.Celebrate)
		})
	}
}

func TestPredictInvalidAnswers(t *testing.T) {
	model := &fakeModel{labels: []int{1}}
	predictor, err := NewPredictor(model)
	require.NoError(t, err)

	answers := exampleAnswers()
	answers.Attraction = 12
	_, err = predictor.PredictAnswers(context.Background(), answers)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Empty(t, model.rows)
}

func TestPredictCache(t *testing.T) {
	model := &fakeModel{labels: []int{1}}
	predictor, err := NewPredictor(model, WithCache(8))
	require.NoError(t, err)

	vector := exampleAnswers().Vector()
	hits := testutil.ToFloat64(CacheHitsTotal)
	first, err := predictor.Predict(context.Background(), vector)
	require.NoError(t, err)
	second, err := predictor.Predict(context.Background(), vector)
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Message, second.Message)
	assert.Len(t, model.rows, 1)
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHitsTotal))
}

func TestPredictRecorder(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	recorder := &fakeRecorder{err: errors.New("disk full")}
	predictor, err := NewPredictor(&fakeModel{labels: []int{1}}, WithRecorder(recorder), WithLogger(zap.New(core)))
	require.NoError(t, err)

	ctx := logger.WithRequest(context.Background(), zap.New(core), "req-42")
	verdict, err := predictor.Predict(ctx, exampleAnswers().Vector())
	require.NoError(t, err)
	assert.Equal(t, CompatibleMessage, verdict.Message)
	require.Len(t, recorder.verdicts, 1)
	assert.Equal(t, verdict, recorder.verdicts[0])

	warnings := observed.FilterMessage("failed to record prediction").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "req-42", warnings[0].ContextMap()["request_id"])
}

func TestNewPredictor(t *testing.T) {
	_, err := NewPredictor(nil)
	assert.Error(t, err)

	_, err = NewPredictor(&fakeModel{features: 4})
	assert.ErrorContains(t, err, "expects 4 features")

	model, err := ml.LoadModel("", filepath.Join("..", "ml", "testdata", "newModel.sav"))
	require.NoError(t, err)
	predictor, err := NewPredictor(model, WithCache(0))
	require.NoError(t, err)
	assert.Equal(t, ml.DecisionTreeType, predictor.ModelType())

	verdict, err := predictor.PredictAnswers(context.Background(), exampleAnswers())
	require.NoError(t, err)
	assert.Equal(t, CompatibleMessage, verdict.Message)

	verdict, err = predictor.PredictAnswers(context.Background(), DefaultAnswers())
	require.NoError(t, err)
	assert.Equal(t, NotCompatibleMessage, verdict.Message)
}
