package serving

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/life-expectancy/pkg/bundle"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/observability/metrics"
	"github.com/synaptica-ai/life-expectancy/pkg/stage"
)

const eventSource = "serving-service"

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// StageCounter is satisfied by storage.StageStats.
type StageCounter interface {
	Increment(ctx context.Context, st stage.LifeStage) error
	Counts(ctx context.Context) (map[string]int64, error)
}

// AssetLocator is satisfied by assets.Store.
type AssetLocator interface {
	Exists(key string) bool
}

// Service runs the prediction pipeline against one immutable bundle.
// Publisher, stats and assets are optional.
type Service struct {
	bundle    *bundle.ModelBundle
	assets    AssetLocator
	publisher EventPublisher
	stats     StageCounter
	now       func() time.Time
}

func NewService(b *bundle.ModelBundle, assets AssetLocator, publisher EventPublisher, stats StageCounter) *Service {
	return &Service{
		bundle:    b,
		assets:    assets,
		publisher: publisher,
		stats:     stats,
		now:       time.Now,
	}
}

func (s *Service) Bundle() *bundle.ModelBundle {
	return s.bundle
}

// Predict validates raw, assembles the record, scores it and classifies the
// score. Side effects after a successful score never fail the request.
func (s *Service) Predict(ctx context.Context, raw features.RawInputs) (models.PredictionResponse, error) {
	start := s.now()

	resp, record, err := s.run(ctx, raw)
	if err != nil {
		f := describe(err)
		metrics.ObserveFailure(f.kind)
		entry := logger.Log.WithError(err).WithField("kind", f.kind)
		if f.status >= 500 {
			entry.Error("prediction failed")
		} else {
			entry.Info("prediction rejected")
		}
		return models.PredictionResponse{}, err
	}

	resp.Latency = s.now().Sub(start)
	resp.Timestamp = start.UTC()
	st := stage.Classify(resp.Prediction)
	metrics.ObservePrediction(st, resp.Latency.Microseconds())

	logger.Log.WithFields(logrus.Fields{
		"prediction_id": resp.ID,
		"prediction":    resp.Prediction,
		"stage":         st.String(),
		"latency_ms":    resp.Latency.Milliseconds(),
	}).Info("Prediction completed")

	s.afterPrediction(ctx, raw, record, st, resp)
	return resp, nil
}

func (s *Service) run(ctx context.Context, raw features.RawInputs) (models.PredictionResponse, features.Record, error) {
	if err := raw.Validate(); err != nil {
		return models.PredictionResponse{}, features.Record{}, err
	}
	record, err := s.bundle.Assemble(raw)
	if err != nil {
		return models.PredictionResponse{}, features.Record{}, err
	}
	prediction, err := s.score(ctx, record)
	if err != nil {
		return models.PredictionResponse{}, features.Record{}, err
	}

	st := stage.Classify(prediction)
	years := stage.RoundYears(prediction)
	return models.PredictionResponse{
		ID:           uuid.New().String(),
		Prediction:   prediction,
		RoundedYears: years,
		Headline:     stage.Headline(years),
		Stage:        stageView(st),
		ImageURL:     s.imageURL(st),
		Summary:      Summarize(raw),
	}, record, nil
}

func (s *Service) score(ctx context.Context, record features.Record) (prediction float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ScoringError{Err: fmt.Errorf("model panicked: %v", r)}
		}
	}()

	prediction, err = s.bundle.Model.Predict(ctx, record)
	if err != nil {
		return 0, &ScoringError{Err: err}
	}
	if math.IsNaN(prediction) || math.IsInf(prediction, 0) {
		return 0, &ScoringError{Err: fmt.Errorf("model returned %v", prediction)}
	}
	return prediction, nil
}

func (s *Service) imageURL(st stage.LifeStage) string {
	key := st.Illustration()
	if s.assets == nil || !s.assets.Exists(key) {
		metrics.ObserveAssetMissing()
		logger.Log.WithField("illustration", key).Info("Stage image not found")
		return ""
	}
	return "/assets/" + key
}

func (s *Service) afterPrediction(ctx context.Context, raw features.RawInputs, record features.Record, st stage.LifeStage, resp models.PredictionResponse) {
	if s.stats != nil {
		if err := s.stats.Increment(ctx, st); err != nil {
			logger.Log.WithError(err).Warn("failed to update stage tally")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, models.EventPredicted, eventSource, EventData(raw, record, resp)); err != nil {
			logger.Log.WithError(err).WithField("prediction_id", resp.ID).Warn("failed to publish prediction event")
		}
	}
}

// Stats returns the stage tallies, or false when no counter is configured.
func (s *Service) Stats(ctx context.Context) (map[string]int64, bool, error) {
	if s.stats == nil {
		return nil, false, nil
	}
	counts, err := s.stats.Counts(ctx)
	return counts, true, err
}

// Schema describes the bundle's columns and encoder vocabularies.
func (s *Service) Schema() models.SchemaResponse {
	encoders := make(map[string][]string, len(s.bundle.Encoders))
	for field, enc := range s.bundle.Encoders {
		encoders[field] = enc.Classes()
	}
	return models.SchemaResponse{
		Columns:  append([]string(nil), s.bundle.Columns...),
		Encoders: encoders,
	}
}

// EventData is the payload of a prediction event.
func EventData(raw features.RawInputs, record features.Record, resp models.PredictionResponse) map[string]interface{} {
	summary := make(map[string]interface{}, len(resp.Summary))
	for _, row := range resp.Summary {
		summary[row.Factor] = row.Selection
	}
	return map[string]interface{}{
		"prediction_id": resp.ID,
		"prediction":    resp.Prediction,
		"rounded_years": resp.RoundedYears,
		"stage":         resp.Stage.Name,
		"illustration":  resp.Stage.Illustration,
		"status":        raw.Status,
		"country":       raw.Country,
		"features":      record.Map(),
		"summary":       summary,
		"latency_ms":    float64(resp.Latency.Microseconds()) / 1000.0,
	}
}

func stageView(st stage.LifeStage) models.StageView {
	return models.StageView{
		Name:         st.String(),
		Label:        st.Label(),
		Indicator:    st.Indicator(),
		Illustration: st.Illustration(),
	}
}
