package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	strutil "aurum/pkg/platform/strings"
)

// Admin provisions topics and checks broker connectivity.
type Admin struct {
	client  *kgo.Client
	admin   *kadm.Client
	timeout time.Duration
}

// NewAdmin creates an admin client for the given comma separated brokers.
func NewAdmin(brokers string) (*Admin, error) {
	if brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	client, err := kgo.NewClient(kgo.SeedBrokers(strutil.SplitList(brokers)...))
	if err != nil {
		return nil, fmt.Errorf("create kafka admin client: %w", err)
	}
	return &Admin{
		client:  client,
		admin:   kadm.NewClient(client),
		timeout: 5 * time.Second,
	}, nil
}

// EnsureTopic creates topic if it does not exist yet.
func (a *Admin) EnsureTopic(ctx context.Context, topic string, partitions int32, replication int16) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.admin.CreateTopic(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Check verifies that broker metadata can be fetched.
func (a *Admin) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	brokers, err := a.admin.ListBrokers(ctx)
	if err != nil {
		return fmt.Errorf("list kafka brokers: %w", err)
	}
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers reachable")
	}
	return nil
}

// Name returns the check name for health reporting.
func (a *Admin) Name() string {
	return "kafka"
}

// Close releases the underlying client.
func (a *Admin) Close() {
	a.admin.Close()
}
