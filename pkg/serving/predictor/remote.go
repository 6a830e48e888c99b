package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/gateway/httpclient"
)

// Remote scores records through an HTTP backend that serves the trained
// model, e.g. a sidecar holding the pickled estimator.
type Remote struct {
	endpoint  string
	client    *http.Client
	attempts  int
	baseDelay time.Duration
}

type scoreRequest struct {
	Columns []string    `json:"columns"`
	Data    [][]float64 `json:"data"`
}

type scoreResponse struct {
	Predictions []float64 `json:"predictions"`
}

func NewRemote(endpoint string, client *http.Client, attempts int) (*Remote, error) {
	if endpoint == "" {
		return nil, errors.New("remote model endpoint required")
	}
	if client == nil {
		client = httpclient.New(5 * time.Second)
	}
	if attempts <= 0 {
		attempts = 1
	}
	return &Remote{endpoint: endpoint, client: client, attempts: attempts, baseDelay: 100 * time.Millisecond}, nil
}

func (r *Remote) Predict(ctx context.Context, record features.Record) (float64, error) {
	payload, err := json.Marshal(scoreRequest{
		Columns: record.Columns(),
		Data:    [][]float64{record.Values()},
	})
	if err != nil {
		return 0, err
	}

	var prediction float64
	attempt := 0
	err = httpclient.Retry(ctx, r.attempts, r.baseDelay, func() error {
		attempt++
		value, err := r.score(ctx, payload)
		if err != nil {
			logger.Log.WithError(err).WithField("attempt", attempt).Warn("remote scoring attempt failed")
			return err
		}
		prediction = value
		return nil
	})
	return prediction, err
}

func (r *Remote) score(ctx context.Context, payload []byte) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, httpclient.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if httpclient.IsRetriable(err) {
			return 0, err
		}
		return 0, httpclient.Permanent(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("scoring backend returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, httpclient.Permanent(fmt.Errorf("scoring backend returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, httpclient.Permanent(fmt.Errorf("decode scoring response: %w", err))
	}
	if len(out.Predictions) != 1 {
		return 0, httpclient.Permanent(fmt.Errorf("expected 1 prediction, got %d", len(out.Predictions)))
	}
	return out.Predictions[0], nil
}
