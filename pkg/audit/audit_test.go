package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	return NewRepository(gdb), mock
}

func predictionEvent() models.Event {
	return models.Event{
		ID:        "evt-1",
		Type:      models.EventPredicted,
		Source:    "serving-service",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Data: map[string]interface{}{
			"prediction_id": "pred-1",
			"prediction":    68.3,
			"rounded_years": float64(68),
			"stage":         "Unhealthy",
			"status":        "Developing",
			"features":      map[string]interface{}{"Schooling": 12.0},
			"summary":       map[string]interface{}{"Schooling Years": "12.0 years"},
			"latency_ms":    1.5,
		},
	}
}

func TestRecordPrediction(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "prediction_logs"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	log, err := FromEvent(predictionEvent())
	if err != nil {
		t.Fatalf("from event: %v", err)
	}
	if err := repo.RecordPrediction(context.Background(), log); err != nil {
		t.Fatalf("record: %v", err)
	}
	if log.ID.String() == "00000000-0000-0000-0000-000000000000" || log.CreatedAt.IsZero() {
		t.Fatal("expected id and created_at to be assigned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecentQueriesNewestFirst(t *testing.T) {
	repo, mock := newMockRepository(t)
	rows := sqlmock.NewRows([]string{"prediction_id", "event_id", "prediction", "stage"}).
		AddRow("pred-2", "evt-2", 72.0, "Healthy").
		AddRow("pred-1", "evt-1", 68.3, "Unhealthy")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "prediction_logs" ORDER BY created_at DESC LIMIT`)).
		WillReturnRows(rows)

	logs, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(logs) != 2 || logs[0].PredictionID != "pred-2" {
		t.Fatalf("unexpected logs %+v", logs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFromEvent(t *testing.T) {
	log, err := FromEvent(predictionEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.PredictionID != "pred-1" || log.EventID != "evt-1" || log.RoundedYears != 68 {
		t.Fatalf("unexpected log %+v", log)
	}
	if log.Stage != "Unhealthy" || log.Features["Schooling"] != 12.0 {
		t.Fatalf("unexpected log detail %+v", log)
	}

	other := predictionEvent()
	other.Type = "model.retrained"
	if _, err := FromEvent(other); !errors.Is(err, errNotPrediction) {
		t.Fatalf("expected errNotPrediction, got %v", err)
	}

	missing := predictionEvent()
	delete(missing.Data, "prediction")
	if _, err := FromEvent(missing); err == nil {
		t.Fatal("expected error for missing prediction")
	}
}

type memoryRecorder struct {
	logs []*PredictionLog
	err  error
}

func (m *memoryRecorder) RecordPrediction(ctx context.Context, log *PredictionLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func TestHandle(t *testing.T) {
	logger.Silence()
	recorder := &memoryRecorder{}
	handle := Handle(recorder)

	if err := handle(context.Background(), predictionEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := predictionEvent()
	other.Type = "other"
	if err := handle(context.Background(), other); err != nil {
		t.Fatalf("other events should be skipped, got %v", err)
	}
	malformed := predictionEvent()
	malformed.Data = map[string]interface{}{}
	if err := handle(context.Background(), malformed); err != nil {
		t.Fatalf("malformed events should be dropped, got %v", err)
	}
	if len(recorder.logs) != 1 {
		t.Fatalf("expected one stored log, got %d", len(recorder.logs))
	}

	// storage failures are returned so the consumer retries the message
	recorder.err = errors.New("db down")
	if err := handle(context.Background(), predictionEvent()); err == nil {
		t.Fatal("expected storage error")
	}
}

type staticLister struct {
	logs  []PredictionLog
	limit int
}

func (s *staticLister) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	s.limit = limit
	return s.logs, nil
}

func TestHTTPRecent(t *testing.T) {
	lister := &staticLister{logs: []PredictionLog{{PredictionID: "pred-1", Stage: "Healthy"}}}
	router := mux.NewRouter()
	NewHTTPHandler(lister).Register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predictions?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lister.limit != 5 {
		t.Fatalf("expected limit 5, got %d", lister.limit)
	}
	var body struct {
		Predictions []PredictionLog `json:"predictions"`
		Count       int             `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Predictions[0].PredictionID != "pred-1" {
		t.Fatalf("unexpected body %+v", body)
	}

	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/predictions?limit=-1", nil))
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.Code)
	}
}
