// Package worker relays committed outbox entries to the event stream.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"aurum/internal/platform/kafka/producer"
	"aurum/pkg/platform/circuit"
	"aurum/pkg/platform/outbox"
	"aurum/pkg/platform/outbox/metrics"
	"aurum/pkg/platform/tx"
)

// Producer is the slice of the Kafka producer the relay needs.
type Producer interface {
	ProduceBatch(ctx context.Context, msgs []*producer.Message) ([]error, error)
}

// Worker polls the outbox and publishes pending entries in append order.
// Delivery is at least once: an entry published but not marked is sent again.
type Worker struct {
	store        outbox.Store
	producer     Producer
	tx           tx.Runner
	topic        string
	batchSize    int
	pollInterval time.Duration
	retention    time.Duration
	drainTimeout time.Duration
	breaker      *circuit.Breaker
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Worker.
type Option func(*Worker)

// WithTopic sets the Kafka topic for publishing.
func WithTopic(topic string) Option {
	return func(w *Worker) { w.topic = topic }
}

// WithBatchSize sets the maximum number of entries to fetch per poll.
func WithBatchSize(size int) Option {
	return func(w *Worker) { w.batchSize = size }
}

// WithPollInterval sets the interval between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) { w.pollInterval = interval }
}

// WithRetention enables purging of processed entries older than d.
func WithRetention(d time.Duration) Option {
	return func(w *Worker) { w.retention = d }
}

// WithTxRunner runs each poll cycle inside a transaction so fetched rows stay
// locked until they are marked.
func WithTxRunner(runner tx.Runner) Option {
	return func(w *Worker) { w.tx = runner }
}

// WithBreaker guards the producer. While the circuit is open each poll
// publishes a single entry as a probe instead of a full batch.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) { w.breaker = b }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithClock overrides the time source used for processed_at stamps.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// New creates a new outbox worker.
func New(store outbox.Store, prod Producer, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		store:        store,
		producer:     prod,
		topic:        "aurum.token.events",
		batchSize:    100,
		pollInterval: 100 * time.Millisecond,
		drainTimeout: 10 * time.Second,
		now:          time.Now,
		logger:       slog.New(slog.DiscardHandler),
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the polling loop in a background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case <-ticker.C:
			if _, err := w.Poll(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("outbox poll failed", "error", err)
			}
			w.purge(w.ctx)
		}
	}
}

// Poll publishes one batch and returns how many entries were marked processed.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.ObservePollDuration(time.Since(start).Seconds())
		}
	}()

	if w.tx == nil {
		return w.publishBatch(ctx)
	}
	var published int
	err := w.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		published, err = w.publishBatch(ctx)
		return err
	})
	return published, err
}

func (w *Worker) publishBatch(ctx context.Context) (int, error) {
	limit := w.batchSize
	if w.breaker != nil && w.breaker.IsOpen() {
		limit = 1
	}
	entries, err := w.store.FetchUnprocessed(ctx, limit)
	if err != nil {
		if w.metrics != nil {
			w.metrics.AddPublishFailures(1)
		}
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(entries))
	}

	msgs := make([]*producer.Message, len(entries))
	for i, entry := range entries {
		msgs[i] = w.message(entry)
	}

	start := time.Now()
	errs, err := w.producer.ProduceBatch(ctx, msgs)
	if err != nil {
		w.recordOutcome(false)
		if w.metrics != nil {
			w.metrics.AddPublishFailures(len(entries))
		}
		return 0, err
	}
	if w.metrics != nil {
		w.metrics.ObservePublishDuration(time.Since(start).Seconds())
	}

	published, failed := 0, 0
	for i, entry := range entries {
		if errs[i] != nil {
			failed++
			w.logger.Error("failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", errs[i],
			)
			continue
		}
		if err := w.store.MarkProcessed(ctx, entry.ID, w.now()); err != nil {
			w.logger.Error("failed to mark outbox entry processed",
				"id", entry.ID,
				"error", err,
			)
			continue
		}
		published++
	}
	w.recordOutcome(failed == 0)
	if w.metrics != nil {
		w.metrics.AddPublished(published)
		w.metrics.AddPublishFailures(failed)
	}
	return published, nil
}

func (w *Worker) recordOutcome(ok bool) {
	if w.breaker == nil {
		return
	}
	var change circuit.StateChange
	if ok {
		change = w.breaker.RecordSuccess()
	} else {
		change = w.breaker.RecordFailure()
	}
	switch {
	case change.Opened:
		w.logger.Warn("event stream circuit opened, publishing probes only", "breaker", w.breaker.Name())
	case change.Closed:
		w.logger.Info("event stream circuit closed", "breaker", w.breaker.Name())
	}
	if w.metrics != nil {
		w.metrics.SetCircuitOpen(w.breaker.IsOpen())
	}
}

// message keys records by aggregate so one aggregate's events share a
// partition and keep their order.
func (w *Worker) message(entry *outbox.Entry) *producer.Message {
	return &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.AggregateType + ":" + entry.AggregateID),
		Value: entry.Payload,
		Headers: map[string]string{
			"event_id":       entry.ID.String(),
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	}
}

func (w *Worker) purge(ctx context.Context) {
	if w.retention <= 0 {
		return
	}
	n, err := w.store.DeleteProcessedBefore(ctx, w.now().Add(-w.retention))
	if err != nil {
		w.logger.Warn("outbox purge failed", "error", err)
		return
	}
	if n > 0 && w.metrics != nil {
		w.metrics.AddPurged(n)
	}
}

// drain publishes what is left at shutdown. It stops at the first batch that
// makes no progress so a broker outage cannot hold shutdown hostage.
func (w *Worker) drain() {
	w.logger.Info("draining outbox worker")

	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	for {
		published, err := w.Poll(ctx)
		if err != nil {
			w.logger.Error("outbox drain stopped", "error", err)
			return
		}
		if published == 0 {
			return
		}
	}
}

// Stop cancels the polling loop and waits for the drain to finish.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateMetrics refreshes the pending depth gauge.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}
	count, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}
	w.metrics.SetPendingDepth(count)
	return nil
}
