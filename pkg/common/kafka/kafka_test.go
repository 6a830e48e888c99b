package kafka

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
)

func TestEncodeDecodeMessage(t *testing.T) {
	event := NewEvent(models.EventPredicted, "serving-service", map[string]interface{}{
		"stage": "Unhealthy",
	})
	message, err := EncodeMessage(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(message.Key) != event.ID {
		t.Fatalf("expected key %s, got %s", event.ID, message.Key)
	}
	if len(message.Headers) != 2 || string(message.Headers[0].Value) != models.EventPredicted {
		t.Fatalf("unexpected headers %+v", message.Headers)
	}

	decoded, err := DecodeMessage(message)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != event.ID || decoded.Data["stage"] != "Unhealthy" {
		t.Fatalf("unexpected decoded event %+v", decoded)
	}
}

type scriptedReader struct {
	messages  []kafka.Message
	fetchErrs []error
	next      int
	committed []int64
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		return kafka.Message{}, err
	}
	if r.next >= len(r.messages) {
		return kafka.Message{}, io.EOF
	}
	m := r.messages[r.next]
	r.next++
	return m, nil
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func eventMessage(t *testing.T, offset int64, stage string) kafka.Message {
	t.Helper()
	message, err := EncodeMessage(NewEvent(models.EventPredicted, "serving-service", map[string]interface{}{"stage": stage}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	message.Offset = offset
	return message
}

func testConsumer(reader messageReader) *Consumer {
	c := newConsumer(reader)
	c.retryDelay = time.Millisecond
	c.maxRetryWait = 2 * time.Millisecond
	return c
}

func TestConsumeRetriesFailedMessageBeforeCommitting(t *testing.T) {
	logger.Silence()
	reader := &scriptedReader{messages: []kafka.Message{
		eventMessage(t, 10, "Critical"),
		eventMessage(t, 11, "Healthy"),
	}}

	var handled []string
	failures := 2
	handler := func(ctx context.Context, event models.Event) error {
		stage, _ := event.Data["stage"].(string)
		if stage == "Critical" && failures > 0 {
			failures--
			return errors.New("db down")
		}
		handled = append(handled, stage)
		return nil
	}

	err := testConsumer(reader).Consume(context.Background(), handler)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF once the reader is drained, got %v", err)
	}
	if len(handled) != 2 || handled[0] != "Critical" || handled[1] != "Healthy" {
		t.Fatalf("expected both events in order, got %v", handled)
	}
	if len(reader.committed) != 2 || reader.committed[0] != 10 || reader.committed[1] != 11 {
		t.Fatalf("unexpected commits %v", reader.committed)
	}
}

func TestConsumeStopsRetryingOnCancel(t *testing.T) {
	logger.Silence()
	reader := &scriptedReader{messages: []kafka.Message{eventMessage(t, 3, "Critical")}}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	handler := func(ctx context.Context, event models.Event) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return errors.New("db down")
	}

	if err := testConsumer(reader).Consume(ctx, handler); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(reader.committed) != 0 {
		t.Fatalf("failed message must not be committed, got %v", reader.committed)
	}
}

func TestConsumeBacksOffOnFetchErrors(t *testing.T) {
	logger.Silence()
	reader := &scriptedReader{
		fetchErrs: []error{errors.New("broker unavailable"), errors.New("broker unavailable")},
		messages:  []kafka.Message{eventMessage(t, 0, "Healthy")},
	}
	handled := 0
	handler := func(ctx context.Context, event models.Event) error {
		handled++
		return nil
	}

	if err := testConsumer(reader).Consume(context.Background(), handler); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if handled != 1 {
		t.Fatalf("expected the message after fetch errors to be handled, got %d", handled)
	}
}
