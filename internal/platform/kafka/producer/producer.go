package producer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"aurum/internal/platform/config"
	strutil "aurum/pkg/platform/strings"
)

// Message represents a message to be published to Kafka.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer wraps the franz-go client with a simpler interface.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// New creates a new Kafka producer.
func New(cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	brokers := strutil.SplitList(cfg.Brokers)

	var acks kgo.Acks
	switch cfg.Acks {
	case "0":
		acks = kgo.NoAck()
	case "1":
		acks = kgo.LeaderAck()
	default:
		acks = kgo.AllISRAcks()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(acks),
		kgo.RecordRetries(cfg.Retries),
		kgo.ProducerBatchMaxBytes(16384),
		kgo.ProducerLinger(5 * time.Millisecond),
	}

	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		client: client,
		logger: logger,
	}, nil
}

// Produce sends a message to Kafka synchronously.
// It waits for the delivery report before returning.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	errs, err := p.ProduceBatch(ctx, []*Message{msg})
	if err != nil {
		return err
	}
	return errs[0]
}

// ProduceBatch sends msgs in one synchronous round and reports a delivery
// error per message, in input order. The second return value is non-nil only
// when nothing could be attempted.
func (p *Producer) ProduceBatch(ctx context.Context, msgs []*Message) ([]error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, fmt.Errorf("producer is closed")
	}

	records := make([]*kgo.Record, len(msgs))
	index := make(map[*kgo.Record]int, len(msgs))
	for i, msg := range msgs {
		records[i] = toRecord(msg)
		index[records[i]] = i
	}

	errs := make([]error, len(msgs))
	for _, result := range p.client.ProduceSync(ctx, records...) {
		if result.Err != nil {
			errs[index[result.Record]] = fmt.Errorf("produce message: %w", result.Err)
		}
	}
	return errs, nil
}

func toRecord(msg *Message) *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return &kgo.Record{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

// Close gracefully shuts down the producer.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.client.Flush(ctx); err != nil {
		if p.logger != nil {
			p.logger.Warn("kafka producer closed with unflushed messages",
				"error", err,
			)
		}
	}

	p.client.Close()
	return nil
}

// Healthy checks if the producer can communicate with brokers.
func (p *Producer) Healthy(ctx context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	return p.client.Ping(ctx) == nil
}

// NoopProducer discards messages. It is used when no brokers are configured
// so the relay still drains the outbox in development.
type NoopProducer struct {
	logger *slog.Logger
}

// NewNoopProducer creates a producer that discards all messages.
func NewNoopProducer(logger *slog.Logger) *NoopProducer {
	return &NoopProducer{logger: logger}
}

func (p *NoopProducer) Produce(ctx context.Context, msg *Message) error {
	errs, err := p.ProduceBatch(ctx, []*Message{msg})
	if err != nil {
		return err
	}
	return errs[0]
}

func (p *NoopProducer) ProduceBatch(ctx context.Context, msgs []*Message) ([]error, error) {
	if p.logger != nil {
		for _, msg := range msgs {
			p.logger.DebugContext(ctx, "event discarded, kafka disabled",
				"topic", msg.Topic,
				"event_type", msg.Headers["event_type"],
			)
		}
	}
	return make([]error, len(msgs)), nil
}

func (p *NoopProducer) Close() error { return nil }

func (p *NoopProducer) Healthy(context.Context) bool { return true }
