package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"aurum/internal/platform/kafka/consumer"
	"aurum/internal/platform/logger"
)

type eventLine struct {
	Partition int32           `json:"partition"`
	Offset    int64           `json:"offset"`
	Key       string          `json:"key,omitempty"`
	Type      string          `json:"type,omitempty"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func newEventsCommand(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the token event stream",
	}

	var (
		group     string
		fromStart bool
		filter    string
	)
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print token events as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if group == "" {
				group = "aurumctl-" + uuid.NewString()
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := consumer.New(consumer.Config{
				Brokers:   cfg.Kafka.Brokers,
				GroupID:   group,
				Topics:    []string{cfg.Kafka.Topic},
				FromStart: fromStart,
			}, printEvents(cmd.OutOrStdout(), filter), log)
			if err != nil {
				return err
			}
			defer c.Close()

			log.Info("tailing events", slog.String("topic", cfg.Kafka.Topic), slog.String("group", group))
			return c.Run(ctx)
		},
	}
	tail.Flags().StringVar(&group, "group", "", "consumer group (a fresh group is used when empty)")
	tail.Flags().BoolVar(&fromStart, "from-start", false, "replay the topic from the earliest offset")
	tail.Flags().StringVar(&filter, "type", "", "only print events of this type")
	cmd.AddCommand(tail)
	return cmd
}

func printEvents(w io.Writer, eventType string) consumer.HandlerFunc {
	return func(_ context.Context, msg *consumer.Message) error {
		typ := msg.Headers["event_type"]
		if eventType != "" && typ != eventType {
			return nil
		}
		payload := json.RawMessage(msg.Value)
		if !json.Valid(payload) {
			quoted, err := json.Marshal(string(msg.Value))
			if err != nil {
				return err
			}
			payload = quoted
		}
		line, err := json.Marshal(eventLine{
			Partition: msg.Partition,
			Offset:    msg.Offset,
			Key:       string(msg.Key),
			Type:      typ,
			Timestamp: msg.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Payload:   payload,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(line))
		return err
	}
}
