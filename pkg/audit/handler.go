package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
)

// Recorder is satisfied by Repository.
type Recorder interface {
	RecordPrediction(ctx context.Context, log *PredictionLog) error
}

var errNotPrediction = errors.New("not a prediction event")

// FromEvent converts a prediction event into a log row.
func FromEvent(event models.Event) (*PredictionLog, error) {
	if event.Type != models.EventPredicted {
		return nil, fmt.Errorf("%w: %s", errNotPrediction, event.Type)
	}
	data := event.Data
	predictionID, _ := data["prediction_id"].(string)
	if predictionID == "" {
		return nil, errors.New("event missing prediction_id")
	}
	prediction, ok := data["prediction"].(float64)
	if !ok {
		return nil, errors.New("event missing prediction")
	}

	log := &PredictionLog{
		PredictionID: predictionID,
		EventID:      event.ID,
		Prediction:   prediction,
		RoundedYears: int(number(data["rounded_years"])),
		Stage:        str(data["stage"]),
		Status:       str(data["status"]),
		Country:      str(data["country"]),
		LatencyMs:    number(data["latency_ms"]),
		PredictedAt:  event.Timestamp,
	}
	if f, ok := data["features"].(map[string]interface{}); ok {
		log.Features = f
	}
	if s, ok := data["summary"].(map[string]interface{}); ok {
		log.Summary = s
	}
	if log.PredictedAt.IsZero() {
		log.PredictedAt = time.Now().UTC()
	}
	return log, nil
}

// Handle returns a consumer handler that stores prediction events. Other
// event types are skipped.
func Handle(recorder Recorder) func(ctx context.Context, event models.Event) error {
	return func(ctx context.Context, event models.Event) error {
		log, err := FromEvent(event)
		if errors.Is(err, errNotPrediction) {
			logger.Log.WithField("event_type", event.Type).Debug("skipping event")
			return nil
		}
		if err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Warn("dropping malformed prediction event")
			return nil
		}
		return recorder.RecordPrediction(ctx, log)
	}
}

func number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
