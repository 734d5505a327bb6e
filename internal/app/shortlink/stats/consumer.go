package stats

import "context"

// Consumer 消费 ChannelCollector 里的事件。
type Consumer struct {
	collector *ChannelCollector
	b         batcher
}

func NewConsumer(sink Sink, collector *ChannelCollector) *Consumer {
	return &Consumer{
		collector: collector,
		b:         batcher{sink: sink, size: defaultBatchSize, interval: defaultInterval, name: "click stats"},
	}
}

// Run 阻塞到 ctx 结束或 collector 关闭。
func (c *Consumer) Run(ctx context.Context) {
	c.b.run(ctx, c.collector.Events())
}
