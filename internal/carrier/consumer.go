package carrier

import (
	"context"
	"strconv"
	"strings"

	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/logger"

	"github.com/IBM/sarama"
)

// Advancer 配送状态推进入口（由配送服务实现）
type Advancer interface {
	Advance(orderID uint) error
}

// Consumer 承运商状态消息消费者
// 消息体为纯订单ID文本；至少一次投递依赖状态机吸收重复迁移
type Consumer struct {
	cfg      *config.KafkaConfig
	advancer Advancer
}

// NewConsumer 创建承运商消息消费者
func NewConsumer(cfg *config.KafkaConfig, advancer Advancer) *Consumer {
	return &Consumer{cfg: cfg, advancer: advancer}
}

// Enabled 判断消费通道是否启用
func (c *Consumer) Enabled() bool {
	return c != nil && c.cfg != nil && c.cfg.Enabled && len(c.cfg.Brokers) > 0
}

// Run 启动消费循环，直到 ctx 取消
func (c *Consumer) Run(ctx context.Context) error {
	if !c.Enabled() {
		logger.Infow("carrier_consumer_disabled")
		return nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, saramaCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := group.Close(); err != nil {
			logger.Errorw("carrier_consumer_close_failed", "error", err)
		}
	}()

	handler := &groupHandler{advancer: c.advancer}
	topics := []string{c.cfg.Topic}
	logger.Infow("carrier_consumer_started", "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := group.Consume(ctx, topics, handler); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Errorw("carrier_consume_failed", "error", err)
			}
		}
	}
}

// groupHandler sarama 消费组处理器
type groupHandler struct {
	advancer Advancer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim 逐条处理承运商状态消息
// 无法解析或推进失败的消息记日志后继续消费，不阻塞分区
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		orderID, ok := parseOrderID(msg.Value)
		if !ok {
			logger.Warnw("carrier_message_invalid", "value", string(msg.Value), "offset", msg.Offset)
			session.MarkMessage(msg, "")
			continue
		}

		if err := h.advancer.Advance(orderID); err != nil {
			logger.Errorw("carrier_advance_failed", "order_id", orderID, "offset", msg.Offset, "error", err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// parseOrderID 解析承运商消息体（纯订单ID文本）
func parseOrderID(value []byte) (uint, bool) {
	raw := strings.TrimSpace(string(value))
	orderID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || orderID == 0 {
		return 0, false
	}
	return uint(orderID), true
}
