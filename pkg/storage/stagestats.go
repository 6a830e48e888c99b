package storage

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/life-expectancy/pkg/stage"
)

// StageStats tallies how many predictions landed in each stage in a Redis hash.
type StageStats struct {
	client *redis.Client
	key    string
}

func NewStageStats(client *redis.Client, key string) *StageStats {
	if key == "" {
		key = "life_expectancy:stage_counts"
	}
	return &StageStats{client: client, key: key}
}

func (s *StageStats) Increment(ctx context.Context, st stage.LifeStage) error {
	return s.client.HIncrBy(ctx, s.key, st.String(), 1).Err()
}

// Counts returns a tally for every stage, zero when never seen.
func (s *StageStats) Counts(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(stage.All))
	for _, st := range stage.All {
		counts[st.String()] = 0
	}
	for name, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counts[name] = n
	}
	return counts, nil
}
