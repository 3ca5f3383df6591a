package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
)

// nodeBacklog is the pending-message queue for one remote node, keyed by
// enqueue timestamp.
type nodeBacklog struct {
	mu        sync.Mutex
	entries   map[int64]domain.BacklogEntry
	replaying bool

	// Failed replays back off exponentially; the worker skips the node
	// until nextAttempt.
	backoff     *backoff.ExponentialBackOff
	nextAttempt time.Time
}

func newNodeBacklog() *nodeBacklog {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0

	return &nodeBacklog{
		entries: make(map[int64]domain.BacklogEntry),
		backoff: b,
	}
}

// BacklogUseCase keeps multi-node balances eventually consistent: it fans
// balance-affecting messages out to every known node and queues them per
// node when delivery fails, replaying in timestamp order on reconnect.
type BacklogUseCase struct {
	delivery DeliveryChannel
	node     string

	mu    sync.Mutex
	nodes map[string]*nodeBacklog

	interval time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewBacklogUseCase creates a synchronizer for the local node name.
func NewBacklogUseCase(delivery DeliveryChannel, node string, interval time.Duration, logger zerolog.Logger) *BacklogUseCase {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &BacklogUseCase{
		delivery: delivery,
		node:     node,
		nodes:    make(map[string]*nodeBacklog),
		interval: interval,
		logger:   logger,
	}
}

// Broadcast sends a balance message to every other known node, queuing it
// for any node that is offline or fails to confirm delivery. Delivery
// failure is never an error for the caller.
func (uc *BacklogUseCase) Broadcast(ctx context.Context, message domain.BalanceSyncMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		uc.logger.Error().Err(err).Msg("failed to encode balance message")
		return
	}

	nodes, err := uc.delivery.Nodes(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("failed to list nodes, queueing for none")
		return
	}

	for _, node := range nodes {
		if node == uc.node {
			continue
		}

		online, err := uc.delivery.Online(ctx, node)
		if err != nil || !online {
			uc.Enqueue(node, payload)
			continue
		}

		if err := uc.delivery.Send(ctx, node, payload); err != nil {
			uc.logger.Debug().Err(err).Str("node", node).Msg("delivery failed, queueing")
			uc.Enqueue(node, payload)
		}
	}
}

// Enqueue appends a message to a node's backlog at the current time. A
// colliding timestamp bumps forward one nanosecond so arrival order is kept
// instead of overwriting.
func (uc *BacklogUseCase) Enqueue(node string, payload []byte) {
	backlog := uc.backlogFor(node)

	backlog.mu.Lock()
	defer backlog.mu.Unlock()

	ts := time.Now().UnixNano()
	for {
		if _, exists := backlog.entries[ts]; !exists {
			break
		}
		ts++
	}

	backlog.entries[ts] = domain.BacklogEntry{Time: ts, Payload: payload}

	if uc.metrics != nil {
		uc.metrics.BacklogEnqueued.Inc()
		uc.metrics.BacklogDepth.WithLabelValues(node).Set(float64(len(backlog.entries)))
	}
}

// WithMetrics attaches backlog gauges and counters.
func (uc *BacklogUseCase) WithMetrics(m *metrics.Metrics) *BacklogUseCase {
	uc.metrics = m

	return uc
}

// Pending returns how many messages are queued for node.
func (uc *BacklogUseCase) Pending(node string) int {
	backlog := uc.backlogFor(node)

	backlog.mu.Lock()
	defer backlog.mu.Unlock()

	return len(backlog.entries)
}

// Replay delivers a node's backlog in ascending timestamp order, removing
// each entry only after confirmed delivery. A failure halts the replay and
// leaves the remaining entries queued; only one replay runs per node at a
// time, while distinct nodes replay in parallel.
func (uc *BacklogUseCase) Replay(ctx context.Context, node string) error {
	backlog := uc.backlogFor(node)

	backlog.mu.Lock()
	if backlog.replaying {
		backlog.mu.Unlock()
		return domain.ErrReplayInProgress
	}
	backlog.replaying = true

	keys := make([]int64, 0, len(backlog.entries))
	for ts := range backlog.entries {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	backlog.mu.Unlock()

	defer func() {
		backlog.mu.Lock()
		backlog.replaying = false
		backlog.mu.Unlock()
	}()

	for _, ts := range keys {
		backlog.mu.Lock()
		entry, ok := backlog.entries[ts]
		backlog.mu.Unlock()

		if !ok {
			continue
		}

		if err := uc.delivery.Send(ctx, node, entry.Payload); err != nil {
			backlog.mu.Lock()
			backlog.nextAttempt = time.Now().Add(backlog.backoff.NextBackOff())
			backlog.mu.Unlock()

			uc.logger.Warn().Err(err).
				Str("node", node).
				Int64("entry", ts).
				Msg("replay halted, entries remain queued")

			return err
		}

		backlog.mu.Lock()
		delete(backlog.entries, ts)
		remaining := len(backlog.entries)
		backlog.mu.Unlock()

		if uc.metrics != nil {
			uc.metrics.BacklogReplayed.Inc()
			uc.metrics.BacklogDepth.WithLabelValues(node).Set(float64(remaining))
		}
	}

	backlog.mu.Lock()
	backlog.backoff.Reset()
	backlog.nextAttempt = time.Time{}
	backlog.mu.Unlock()

	uc.logger.Info().Str("node", node).Int("replayed", len(keys)).Msg("backlog replayed")

	return nil
}

// Start runs the replay worker until ctx is cancelled: each tick it replays
// the backlog of every online node that has pending entries and is past its
// backoff window.
func (uc *BacklogUseCase) Start(ctx context.Context) error {
	uc.logger.Info().Dur("interval", uc.interval).Msg("backlog synchronizer started")

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info().Msg("backlog synchronizer shutting down")
			return ctx.Err()
		case <-ticker.C:
			uc.replayPending(ctx)
		}
	}
}

func (uc *BacklogUseCase) replayPending(ctx context.Context) {
	uc.mu.Lock()
	pending := make(map[string]*nodeBacklog, len(uc.nodes))
	for node, backlog := range uc.nodes {
		pending[node] = backlog
	}
	uc.mu.Unlock()

	for node, backlog := range pending {
		backlog.mu.Lock()
		empty := len(backlog.entries) == 0
		waiting := time.Now().Before(backlog.nextAttempt)
		backlog.mu.Unlock()

		if empty || waiting {
			continue
		}

		online, err := uc.delivery.Online(ctx, node)
		if err != nil || !online {
			continue
		}

		go func(node string) {
			if err := uc.Replay(ctx, node); err != nil && err != domain.ErrReplayInProgress {
				uc.logger.Debug().Err(err).Str("node", node).Msg("replay attempt failed")
			}
		}(node)
	}
}

func (uc *BacklogUseCase) backlogFor(node string) *nodeBacklog {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	backlog, ok := uc.nodes[node]
	if !ok {
		backlog = newNodeBacklog()
		uc.nodes[node] = backlog
	}

	return backlog
}
