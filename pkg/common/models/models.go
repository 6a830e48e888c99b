package models

import (
	"time"
)

// Event is the envelope published on the event bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const EventPredicted = "life_expectancy.predicted"

// SummaryRow is one line of the "Summary of Chosen Factors" table.
type SummaryRow struct {
	Factor    string `json:"factor"`
	Selection string `json:"selection"`
}

// StageView is the user-facing description of a life stage.
type StageView struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Indicator    string `json:"indicator"`
	Illustration string `json:"illustration"`
}

type PredictionResponse struct {
	ID           string        `json:"id"`
	Prediction   float64       `json:"prediction"`
	RoundedYears int           `json:"rounded_years"`
	Headline     string        `json:"headline"`
	Stage        StageView     `json:"stage"`
	ImageURL     string        `json:"image_url,omitempty"`
	Summary      []SummaryRow  `json:"summary"`
	Latency      time.Duration `json:"latency"`
	Timestamp    time.Time     `json:"timestamp"`
}

type SchemaResponse struct {
	Columns  []string            `json:"columns"`
	Encoders map[string][]string `json:"encoders"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
