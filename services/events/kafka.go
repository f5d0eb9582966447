package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/womanacademy/renluyen/core"
)

// Producer publishes events as JSON messages keyed by evaluation id.
type Producer struct {
	writer *kafka.Writer
}

var _ core.EventPublisher = (*Producer)(nil)

func NewProducer(conf core.KafkaConfig) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(conf.Brokers...),
			Topic:        conf.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, events ...core.Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			return errors.Wrap(err, "marshalling event")
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(evt.EvaluationID),
			Value: data,
			Time:  evt.OccurredAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, "writing events")
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// MessageReader is the subset of *kafka.Reader used by Consume.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewReader(conf core.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  conf.Brokers,
		GroupID:  conf.GroupID,
		Topic:    conf.Topic,
		MaxWait:  time.Second,
		MinBytes: 1,
		MaxBytes: 1e6,
	})
}

var (
	// RetryBackoff is the first wait after a failure, doubled on each retry up to MaxBackoff.
	RetryBackoff = 500 * time.Millisecond // mockable
	MaxBackoff   = 30 * time.Second       // mockable

	// HandleAttempts bounds the handling of one event before it is dropped.
	HandleAttempts = 3
)

// sleep waits d, or less when ctx is done first; it reports whether ctx is still alive.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > MaxBackoff {
		return MaxBackoff
	}
	return d
}

// handle runs h up to HandleAttempts times, backing off between attempts.
func handle(ctx context.Context, h core.EventHandler, evt core.Event) error {
	backoff := RetryBackoff
	var err error
	for attempt := 1; attempt <= HandleAttempts; attempt++ {
		if err = h.HandleEvent(ctx, evt); err == nil {
			return nil
		}
		if attempt == HandleAttempts || !sleep(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff)
	}
	return err
}

// Consume feeds every message to h until ctx is done.
// Fetch failures are retried with an exponential backoff. Undecodable messages are
// committed and skipped; an event whose handler keeps failing is logged, then committed
// so that it does not block the partition.
func Consume(ctx context.Context, r MessageReader, h core.EventHandler, logger core.Logger) error {
	backoff := RetryBackoff
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("fetching message", errors.Wrap(err, "kafka"), map[string]interface{}{"retryIn": backoff.String()})
			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = RetryBackoff

		var evt core.Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Warn("undecodable message", err, map[string]interface{}{
				"topic":  msg.Topic,
				"offset": msg.Offset,
			})
		} else if err := handle(ctx, h, evt); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("dropping event", errors.Wrap(err, evt.Type), map[string]interface{}{
				"evaluationId": evt.EvaluationID,
				"offset":       msg.Offset,
				"attempts":     HandleAttempts,
			})
		} else {
			logger.Info("event handled", map[string]interface{}{
				"type":         evt.Type,
				"evaluationId": evt.EvaluationID,
			})
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("committing message", errors.Wrap(err, "kafka"))
		}
	}
}
