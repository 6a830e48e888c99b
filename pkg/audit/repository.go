package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PredictionLog is the persisted audit row of one served prediction.
type PredictionLog struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	PredictionID string            `gorm:"column:prediction_id;index" json:"prediction_id"`
	EventID      string            `gorm:"column:event_id;uniqueIndex" json:"event_id"`
	Prediction   float64           `gorm:"column:prediction" json:"prediction"`
	RoundedYears int               `gorm:"column:rounded_years" json:"rounded_years"`
	Stage        string            `gorm:"column:stage;index" json:"stage"`
	Status       string            `gorm:"column:status" json:"status"`
	Country      string            `gorm:"column:country" json:"country,omitempty"`
	Features     datatypes.JSONMap `gorm:"column:features" json:"features"`
	Summary      datatypes.JSONMap `gorm:"column:summary" json:"summary"`
	LatencyMs    float64           `gorm:"column:latency_ms" json:"latency_ms"`
	PredictedAt  time.Time         `gorm:"column:predicted_at" json:"predicted_at"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides gorm naming.
func (PredictionLog) TableName() string {
	return "prediction_logs"
}

// Repository stores and queries prediction logs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PredictionLog{})
}

func (r *Repository) RecordPrediction(ctx context.Context, log *PredictionLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// Recent returns the most recent prediction logs up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var logs []PredictionLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
