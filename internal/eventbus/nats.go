/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_podcast/internal/events"
)

const natsSubjectPrefix = "huginn.events."

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL   string
	Token string
	// Connection options
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1, // Unlimited
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NATSBus bridges the in-process event bus onto NATS so playlist changes
// propagate across nodes. Local delivery always goes through the in-memory
// bus; NATS carries the same events to and from other nodes.
type NATSBus struct {
	conn   *nats.Conn
	logger zerolog.Logger
	local  *events.Bus
	nodeID string

	mu     sync.Mutex
	remote map[events.EventType]*nats.Subscription
}

// NewNATSBus creates a NATS-backed event bus. Falls back to in-memory-only
// delivery if NATS is unavailable.
func NewNATSBus(cfg NATSConfig, logger zerolog.Logger) (*NATSBus, error) {
	logger = logger.With().Str("component", "eventbus").Logger()

	nb := &NATSBus{
		logger: logger,
		local:  events.NewBus(),
		nodeID: generateNodeID(),
		remote: make(map[events.EventType]*nats.Subscription),
	}

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		logger.Warn().Err(err).Msg("NATS unavailable, events stay node-local")
		return nb, nil
	}

	nb.conn = conn
	logger.Info().Str("url", cfg.URL).Msg("NATS event bus initialized")
	return nb, nil
}

// Subscribe registers a subscriber for an event type. The first subscriber
// per type also opens the NATS subscription that imports remote events.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := nb.local.Subscribe(eventType)

	if nb.conn == nil {
		return sub
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	if _, exists := nb.remote[eventType]; !exists {
		subject := natsSubjectPrefix + string(eventType)
		natsSub, err := nb.conn.Subscribe(subject, func(msg *nats.Msg) {
			nb.deliverRemote(eventType, msg.Data)
		})
		if err != nil {
			nb.logger.Error().Err(err).Str("subject", subject).Msg("failed to subscribe on NATS")
			return sub
		}
		nb.remote[eventType] = natsSub
	}

	return sub
}

// deliverRemote fans a NATS message out to local subscribers, skipping
// messages this node published itself.
func (nb *NATSBus) deliverRemote(eventType events.EventType, data []byte) {
	msg, err := unmarshalNATSMessage(data)
	if err != nil {
		nb.logger.Error().Err(err).Msg("failed to unmarshal NATS message")
		return
	}
	if msg.NodeID == nb.nodeID {
		return
	}

	nb.local.Publish(eventType, msg.Payload)

	nb.logger.Debug().
		Str("event_type", string(eventType)).
		Str("source_node", msg.NodeID).
		Msg("delivered NATS event to local subscribers")
}

// Publish sends an event payload to all subscribers, local and remote.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)

	if nb.conn == nil {
		return
	}

	data, err := marshalNATSMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Error().Err(err).Msg("failed to marshal NATS message")
		return
	}

	subject := natsSubjectPrefix + string(eventType)
	if err := nb.conn.Publish(subject, data); err != nil {
		nb.logger.Error().Err(err).Str("subject", subject).Msg("failed to publish to NATS")
	}
}

// Unsubscribe removes a subscriber and closes its channel.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Close drains the NATS connection.
func (nb *NATSBus) Close() error {
	nb.mu.Lock()
	for eventType, natsSub := range nb.remote {
		if err := natsSub.Unsubscribe(); err != nil {
			nb.logger.Debug().Err(err).Str("event_type", string(eventType)).Msg("failed to unsubscribe from NATS")
		}
	}
	nb.remote = make(map[events.EventType]*nats.Subscription)
	nb.mu.Unlock()

	if nb.conn != nil {
		if err := nb.conn.Drain(); err != nil {
			return fmt.Errorf("drain nats connection: %w", err)
		}
	}
	return nil
}

// natsMessage represents a message published to NATS.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"` // For deduplication
}

// marshalNATSMessage converts payload to NATS message format.
func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}

// unmarshalNATSMessage parses a NATS message.
func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "node"
	}
	return host + "-" + uuid.NewString()[:8]
}
