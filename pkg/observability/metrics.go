package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the relay's instruments
type Metrics struct {
	connectionsActive    metric.Int64UpDownCounter
	messagesReceived     metric.Int64Counter
	framesDropped        metric.Int64Counter
	broadcastFailures    metric.Int64Counter
	conversationsCreated metric.Int64Counter
	cacheLookups         metric.Int64Counter
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err, e error

	m.connectionsActive, e = meter.Int64UpDownCounter("ws.connections.active",
		metric.WithDescription("Open WebSocket connections"))
	err = errors.Join(err, e)
	m.messagesReceived, e = meter.Int64Counter("ws.messages.received",
		metric.WithDescription("Chat messages accepted from clients, by emotion"))
	err = errors.Join(err, e)
	m.framesDropped, e = meter.Int64Counter("ws.frames.dropped",
		metric.WithDescription("Inbound frames discarded as malformed, by reason"))
	err = errors.Join(err, e)
	m.broadcastFailures, e = meter.Int64Counter("ws.broadcast.failures",
		metric.WithDescription("Broadcast deliveries rejected by a recipient"))
	err = errors.Join(err, e)
	m.conversationsCreated, e = meter.Int64Counter("conversations.created",
		metric.WithDescription("Conversations created"))
	err = errors.Join(err, e)
	m.cacheLookups, e = meter.Int64Counter("user.cache.lookups",
		metric.WithDescription("User cache lookups, by result"))
	err = errors.Join(err, e)

	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) ConnectionOpened(ctx context.Context) {
	m.connectionsActive.Add(ctx, 1)
}

func (m *Metrics) ConnectionClosed(ctx context.Context) {
	m.connectionsActive.Add(ctx, -1)
}

func (m *Metrics) MessageReceived(ctx context.Context, emotion string) {
	m.messagesReceived.Add(ctx, 1, metric.WithAttributes(attribute.String("emotion", emotion)))
}

func (m *Metrics) FrameDropped(ctx context.Context, reason string) {
	m.framesDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) BroadcastFailed(ctx context.Context) {
	m.broadcastFailures.Add(ctx, 1)
}

func (m *Metrics) ConversationCreated(ctx context.Context) {
	m.conversationsCreated.Add(ctx, 1)
}

// CacheLookup records a hit, miss or error of the user cache
func (m *Metrics) CacheLookup(ctx context.Context, result string) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
