package compat

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"flames/logger"
	"flames/ml"
)

// Verdict is a successful prediction.
type Verdict struct {
	Features FeatureVector
	Label    int
	Message  string
	Cached   bool
}

// HistoryRecorder stores verdicts after they are shown. Failures are logged
// and never change the verdict.
type HistoryRecorder interface {
	Record(ctx context.Context, verdict Verdict) error
}

// Predictor owns the loaded classifier. It is read-only after construction
// and safe for concurrent use.
type Predictor struct {
	model    ml.Classifier
	cache    *lru.Cache[FeatureVector, int]
	recorder HistoryRecorder
	log      *zap.Logger
}

type Option func(*Predictor) error

// WithCache memoizes labels for up to size distinct vectors. The model never
// changes, so entries are never invalidated.
func WithCache(size int) Option {
	return func(p *Predictor) error {
		if size <= 0 {
			return nil
		}
		cache, err := lru.New[FeatureVector, int](size)
		if err != nil {
			return errors.Trace(err)
		}
		p.cache = cache
		return nil
	}
}

func WithRecorder(recorder HistoryRecorder) Option {
	return func(p *Predictor) error {
		p.recorder = recorder
		return nil
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Predictor) error {
		p.log = log
		return nil
	}
}

// NewPredictor wraps a loaded classifier. The classifier must accept
// NumFeatures inputs.
func NewPredictor(model ml.Classifier, opts ...Option) (*Predictor, error) {
	if model == nil {
		return nil, errors.New("classifier is nil")
	}
	if n := model.NumFeatures(); n > 0 && n != NumFeatures {
		return nil, errors.Errorf("classifier expects %d features, the form provides %d", n, NumFeatures)
	}
	p := &Predictor{model: model, log: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ModelType names the loaded classifier.
func (p *Predictor) ModelType() string {
	return p.model.Type()
}

// Predict scores one vector. Any classifier failure, including a panic, is
// returned as *PredictionError.
func (p *Predictor) Predict(ctx context.Context, features FeatureVector) (verdict Verdict, err error) {
	log := logger.FromContext(ctx, p.log)
	verdict.Features = features
	defer func() {
		if r := recover(); r != nil {
			err = &PredictionError{Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			PredictionsTotal.WithLabelValues(outcomeError).Inc()
			log.Error("prediction failed", zap.Float64s("features", features[:]), zap.Error(err))
			return
		}
		if verdict.Label == 1 {
			PredictionsTotal.WithLabelValues(outcomeCompatible).Inc()
		} else {
			PredictionsTotal.WithLabelValues(outcomeNotCompatible).Inc()
		}
		log.Info("prediction",
			zap.Float64s("features", features[:]),
			zap.Int("label", verdict.Label),
			zap.Bool("cached", verdict.Cached))
		p.record(ctx, log, verdict)
	}()

	if p.cache != nil {
		if label, ok := p.cache.Get(features); ok {
			CacheHitsTotal.Inc()
			verdict.Label, verdict.Message, verdict.Cached = label, MessageFor(label), true
			return verdict, nil
		}
	}

	start := time.Now()
	labels, err := p.model.Predict([][]float64{features.Row()})
	PredictSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return verdict, &PredictionError{Err: err}
	}
	if len(labels) != 1 {
		return verdict, &PredictionError{Err: errors.Errorf("expected 1 label, got %d", len(labels))}
	}

	verdict.Label = labels[0]
	verdict.Message = MessageFor(verdict.Label)
	if p.cache != nil {
		p.cache.Add(features, verdict.Label)
	}
	return verdict, nil
}

// PredictAnswers validates a filled-in form and scores it.
func (p *Predictor) PredictAnswers(ctx context.Context, answers Answers) (Verdict, error) {
	if err := answers.Validate(); err != nil {
		return Verdict{Features: answers.Vector()}, err
	}
	return p.Predict(ctx, answers.Vector())
}

func (p *Predictor) record(ctx context.Context, log *zap.Logger, verdict Verdict) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, verdict); err != nil {
		HistoryErrorsTotal.Inc()
		log.Warn("failed to record prediction", zap.Error(err))
	}
}
