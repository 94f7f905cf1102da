package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/timmy/memebazaar/internal/logger"
)

// LocalPublisher fans events out through the in-process hub only.
type LocalPublisher struct {
	hub *Hub
}

// NewLocalPublisher creates a publisher bound to hub.
func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

// Publish encodes payload and queues it on the hub. Delivery is best effort.
func (p *LocalPublisher) Publish(ctx context.Context, topic, event string, payload interface{}) error {
	evt, err := NewEvent(topic, event, payload)
	if err != nil {
		return err
	}
	p.hub.Deliver(evt)
	return nil
}

// RedisPublisher sends events through Redis Pub/Sub so every API instance's
// RedisSubscriber can fan them out to its own clients.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher creates a publisher using channels named "<prefix>:<topic>".
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

// Publish encodes payload and publishes it on the topic's channel.
func (p *RedisPublisher) Publish(ctx context.Context, topic, event string, payload interface{}) error {
	evt, err := NewEvent(topic, event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	channel := channelName(p.prefix, topic)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

// RedisSubscriber listens to Redis Pub/Sub and forwards events to the hub.
type RedisSubscriber struct {
	client *redis.Client
	hub    *Hub
	prefix string
}

// NewRedisSubscriber creates a subscriber for channels under prefix.
func NewRedisSubscriber(client *redis.Client, hub *Hub, prefix string) *RedisSubscriber {
	return &RedisSubscriber{client: client, hub: hub, prefix: prefix}
}

// Start pattern-subscribes to "<prefix>:*" and forwards until ctx is cancelled.
// It returns an error only when the subscription cannot be established.
func (s *RedisSubscriber) Start(ctx context.Context) error {
	ctx = logger.SetComponent(ctx, "redis_subscriber")
	pattern := s.prefix + ":*"

	pubsub := s.client.PSubscribe(ctx, pattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
	}
	logger.CtxInfo(ctx, "Redis subscription confirmed: pattern=%s", pattern)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				logger.CtxInfo(ctx, "Redis subscriber stopping")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.forward(ctx, msg)
			}
		}
	}()
	return nil
}

func (s *RedisSubscriber) forward(ctx context.Context, msg *redis.Message) {
	topic, ok := topicFromChannel(s.prefix, msg.Channel)
	if !ok {
		logger.CtxWarn(ctx, "Ignoring message on unexpected channel: %s", msg.Channel)
		return
	}
	var evt Event
	if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
		logger.CtxWarn(ctx, "Ignoring undecodable event on %s: %v", msg.Channel, err)
		return
	}
	evt.Topic = topic
	s.hub.Deliver(evt)
}

func channelName(prefix, topic string) string {
	return prefix + ":" + topic
}

// topicFromChannel extracts the topic: "memebazaar:events:meme:7" -> "meme:7".
func topicFromChannel(prefix, channel string) (string, bool) {
	topic, ok := strings.CutPrefix(channel, prefix+":")
	if !ok || topic == "" {
		return "", false
	}
	return topic, true
}
