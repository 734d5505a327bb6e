package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"base62num.local/internal/platform/metrics"
	"github.com/segmentio/kafka-go"
)

type KafkaCollector struct {
	writer *kafka.Writer
}

func NewKafkaCollector(brokers []string, topic string) *KafkaCollector {
	return &KafkaCollector{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // 同一个短码进同一个分区
			BatchTimeout: 50 * time.Millisecond,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					metrics.ClickEventsDropped.Add(float64(len(messages)))
					slog.Error("kafka write failed", "count", len(messages), "err", err)
				}
			},
		},
	}
}

func encodeEvent(e ClickEvent) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(e.Code), Value: data, Time: e.ClickedAt}, nil
}

func decodeEvent(msg kafka.Message) (ClickEvent, error) {
	var e ClickEvent
	err := json.Unmarshal(msg.Value, &e)
	return e, err
}

// Collect Async 模式下 WriteMessages 只入队，写失败在 Completion 里统计。
func (k *KafkaCollector) Collect(event ClickEvent) {
	msg, err := encodeEvent(event)
	if err != nil {
		metrics.ClickEventsDropped.Inc()
		return
	}
	if err := k.writer.WriteMessages(context.Background(), msg); err != nil {
		metrics.ClickEventsDropped.Inc()
		slog.Error("kafka enqueue failed", "err", err)
	}
}

func (k *KafkaCollector) Close() {
	if err := k.writer.Close(); err != nil {
		slog.Error("kafka writer close failed", "err", err)
	}
}
