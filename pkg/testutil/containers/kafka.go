//go:build integration

package containers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"aurum/internal/platform/config"
	"aurum/internal/platform/kafka"
	"aurum/internal/platform/kafka/consumer"
)

// EventsTopic is the token event topic provisioned on every broker started
// here, matching the server's default KAFKA_TOPIC.
const EventsTopic = "aurum.token.events"

// KafkaContainer is a single-node Redpanda broker with the token event
// topic already created.
type KafkaContainer struct {
	Container testcontainers.Container
	Brokers   string
	admin     *kafka.Admin
}

// NewKafkaContainer starts the broker and provisions EventsTopic through
// the same admin path the server uses at startup.
func NewKafkaContainer(t *testing.T) *KafkaContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tckafka.Run(ctx,
		"redpandadata/redpanda:latest",
		tckafka.WithClusterID("aurum-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(ctx)
	})

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	admin, err := kafka.NewAdmin(brokers[0])
	if err != nil {
		t.Fatalf("failed to create kafka admin: %v", err)
	}
	t.Cleanup(admin.Close)

	kc := &KafkaContainer{Container: container, Brokers: brokers[0], admin: admin}
	if err := kc.CreateTopic(ctx, EventsTopic); err != nil {
		t.Fatalf("failed to provision %s: %v", EventsTopic, err)
	}
	return kc
}

// Config returns the server's Kafka settings pointed at this broker and
// the token event topic.
func (k *KafkaContainer) Config() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:           k.Brokers,
		Topic:             EventsTopic,
		Acks:              "all",
		Retries:           3,
		DeliveryTimeout:   10 * time.Second,
		Partitions:        1,
		ReplicationFactor: 1,
	}
}

// CreateTopic creates a single-partition topic. An existing topic is left alone.
func (k *KafkaContainer) CreateTopic(ctx context.Context, topic string) error {
	return k.admin.EnsureTopic(ctx, topic, 1, 1)
}

// Collect reads topic from the start with a fresh consumer group until n
// messages matching keep have arrived or ctx expires. A nil keep accepts
// every message.
func (k *KafkaContainer) Collect(ctx context.Context, group, topic string, n int, keep func(*consumer.Message) bool) ([]*consumer.Message, error) {
	var (
		mu  sync.Mutex
		got []*consumer.Message
	)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	c, err := consumer.New(consumer.Config{
		Brokers:   k.Brokers,
		GroupID:   group,
		Topics:    []string{topic},
		FromStart: true,
	}, consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		if keep != nil && !keep(msg) {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		if len(got) >= n {
			stop()
		}
		return nil
	}), nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.Run(runCtx); err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) < n {
		return got, fmt.Errorf("collected %d of %d messages from %s before the deadline", len(got), n, topic)
	}
	return got, nil
}
