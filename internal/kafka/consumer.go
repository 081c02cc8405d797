package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})

	if workers <= 0 {
		workers = 1
	}

	return &Consumer{r: r, workers: workers}
}

// Start fetches messages and fans them out to the worker pool until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers*4)

	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			for m := range jobs {
				if err := h(ctx, m); err != nil {
					slog.Error("failed to handle message",
						"worker", id, "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
					time.Sleep(200 * time.Millisecond)

					continue
				}

				if err := c.r.CommitMessages(ctx, m); err != nil {
					slog.Error("failed to commit offset", "worker", id, "offset", m.Offset, "error", err)
				}
			}
		}(i)
	}

	defer wg.Wait()
	defer close(jobs)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}
