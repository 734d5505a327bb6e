package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "click-stats-consumer"

type KafkaConsumer struct {
	reader *kafka.Reader
	b      batcher
}

func NewKafkaConsumer(brokers []string, topic string, sink Sink) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  consumerGroup,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		b: batcher{sink: sink, size: defaultBatchSize, interval: defaultInterval, name: "kafka consumer"},
	}
}

// Run 阻塞到 ctx 结束。读消息在单独的 goroutine 里，避免 ReadMessage 卡住攒批的 ticker。
func (k *KafkaConsumer) Run(ctx context.Context) {
	events := make(chan ClickEvent, defaultBatchSize)
	go func() {
		defer close(events)
		for {
			msg, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("kafka read failed", "err", err)
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}
			e, err := decodeEvent(msg)
			if err != nil {
				slog.Error("kafka decode failed", "offset", msg.Offset, "err", err)
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	k.b.run(ctx, events)
}

func (k *KafkaConsumer) Close() {
	if err := k.reader.Close(); err != nil {
		slog.Error("kafka reader close failed", "err", err)
	}
}
