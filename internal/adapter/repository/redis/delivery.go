package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	nodesKey       = "econ:nodes"
	presencePrefix = "econ:presence:"
	channelPrefix  = "econ:node:"

	presenceTTL       = 15 * time.Second
	heartbeatInterval = 5 * time.Second
)

// Delivery implements usecase.DeliveryChannel over Redis pub/sub. Every node
// registers itself in a shared set and keeps a presence key alive; messages
// travel over one channel per node. A publish with no subscriber counts as a
// failed delivery so the caller can queue it.
type Delivery struct {
	client *redis.Client
	node   string
	logger zerolog.Logger
}

// NewDelivery creates a delivery channel for the local node name.
func NewDelivery(client *redis.Client, node string, logger zerolog.Logger) *Delivery {
	return &Delivery{
		client: client,
		node:   node,
		logger: logger,
	}
}

// Register adds the local node to the shared registry and marks it online.
func (d *Delivery) Register(ctx context.Context) error {
	if err := d.client.SAdd(ctx, nodesKey, d.node).Err(); err != nil {
		return err
	}

	return d.client.Set(ctx, presencePrefix+d.node, "1", presenceTTL).Err()
}

// Heartbeat keeps the local node's presence key alive until ctx is
// cancelled, at which point the node is marked offline.
func (d *Delivery) Heartbeat(ctx context.Context) error {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cleanup, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			if err := d.client.Del(cleanup, presencePrefix+d.node).Err(); err != nil {
				d.logger.Warn().Err(err).Msg("failed to clear presence on shutdown")
			}

			return ctx.Err()
		case <-ticker.C:
			if err := d.client.Set(ctx, presencePrefix+d.node, "1", presenceTTL).Err(); err != nil {
				d.logger.Warn().Err(err).Msg("presence refresh failed")
			}
		}
	}
}

// Nodes lists every node that has ever registered.
func (d *Delivery) Nodes(ctx context.Context) ([]string, error) {
	return d.client.SMembers(ctx, nodesKey).Result()
}

// Online reports whether a node's presence key is alive.
func (d *Delivery) Online(ctx context.Context, node string) (bool, error) {
	n, err := d.client.Exists(ctx, presencePrefix+node).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Send publishes a payload to a node's channel. Delivery is confirmed only
// when at least one subscriber received it.
func (d *Delivery) Send(ctx context.Context, node string, payload []byte) error {
	receivers, err := d.client.Publish(ctx, channelPrefix+node, payload).Result()
	if err != nil {
		return err
	}

	if receivers == 0 {
		return fmt.Errorf("node %s has no subscriber", node)
	}

	return nil
}

// Listen subscribes to the local node's channel and invokes handler for
// every payload until ctx is cancelled. Handler errors are logged, not
// fatal.
func (d *Delivery) Listen(ctx context.Context, handler func(payload []byte) error) error {
	sub := d.client.Subscribe(ctx, channelPrefix+d.node)
	defer sub.Close()

	// Force the subscription before reporting ready.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	d.logger.Info().Str("node", d.node).Msg("listening for balance messages")

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			if err := handler([]byte(msg.Payload)); err != nil {
				d.logger.Error().Err(err).Msg("failed to apply balance message")
			}
		}
	}
}
