package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"neurobridge/backend/internal/emotion"
	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/store"
	"neurobridge/backend/pkg/logger"
	"neurobridge/backend/pkg/observability"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const frameTypeMessage = "message"

// Reasons a frame is dropped, used as the metric attribute
const (
	dropInvalidJSON    = "invalid_json"
	dropMissingType    = "missing_type"
	dropMissingContent = "missing_content"
	dropUnknownSender  = "unknown_sender"
)

// inboundFrame is what clients send. Pointer fields distinguish absent from
// empty.
type inboundFrame struct {
	Type           string  `json:"type"`
	Content        *string `json:"content"`
	ConversationID *string `json:"conversation_id"`
	Sender         string  `json:"sender"`
	Emotion        string  `json:"emotion"`
}

// outboundFrame confirms a message back to its sender
type outboundFrame struct {
	Type           string         `json:"type"`
	Message        models.Message `json:"message"`
	ConversationID *string        `json:"conversation_id"`
}

// DepartureNotice is the text broadcast when a client's session ends
func DepartureNotice(clientID string) string {
	return fmt.Sprintf("Client #%s left the chat", clientID)
}

// SessionConfig carries the optional collaborators of a SessionHandler
type SessionConfig struct {
	Connection ConnectionConfig
	Logger     *logger.Logger
	Metrics    *observability.Metrics
	Tracer     trace.Tracer
}

// SessionHandler runs one read loop per connected client: it decodes frames,
// tags and stores messages and routes confirmations through the Registry
type SessionHandler struct {
	registry      *Registry
	conversations store.ConversationStore
	classifier    emotion.Classifier
	cfg           ConnectionConfig
	log           *logger.Logger
	metrics       *observability.Metrics
	tracer        trace.Tracer
	now           func() time.Time

	// lifecycle orders registration against Shutdown: a session either
	// registers before closing is set, and is closed by CloseAll, or is refused
	lifecycle sync.Mutex
	closing   atomic.Bool
	sessions  sync.WaitGroup
}

// NewSessionHandler creates a handler bound to the given registry and store
func NewSessionHandler(registry *Registry, conversations store.ConversationStore, classifier emotion.Classifier, cfg SessionConfig) *SessionHandler {
	h := &SessionHandler{
		registry:      registry,
		conversations: conversations,
		classifier:    classifier,
		cfg:           cfg.Connection.withDefaults(),
		log:           cfg.Logger,
		metrics:       cfg.Metrics,
		tracer:        cfg.Tracer,
		now:           func() time.Time { return time.Now().UTC() },
	}
	if h.classifier == nil {
		h.classifier = emotion.NewKeyword()
	}
	if h.log == nil {
		h.log = logger.GetGlobal()
	}
	if h.metrics == nil {
		h.metrics = observability.NopMetrics()
	}
	if h.tracer == nil {
		h.tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	return h
}

// session is the per-connection state of one read loop
type session struct {
	clientID string
	conn     *Connection
	log      *logger.Logger
	once     sync.Once
}

// Serve registers conn under clientID and runs its read loop until the peer
// goes away or the connection is closed. It blocks for the session lifetime.
func (h *SessionHandler) Serve(ctx context.Context, clientID string, wsConn *websocket.Conn) {
	conn := NewConnection(wsConn, h.cfg)
	old, ok := h.register(clientID, conn)
	if !ok {
		_ = conn.Close()
		return
	}
	defer h.sessions.Done()

	s := &session{
		clientID: clientID,
		conn:     conn,
		log:      h.log.WithClientID(clientID),
	}

	if old != nil {
		s.log.Info("Replacing existing connection for client")
		_ = old.Close()
	}
	h.metrics.ConnectionOpened(ctx)
	s.log.Info("Client connected", "connections", h.registry.Count())

	defer h.end(ctx, s)

	for {
		data, err := conn.Read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.log.Warn("Unexpected close", "error", err.Error())
			} else {
				s.log.Debug("Read loop finished", "error", err.Error())
			}
			return
		}
		h.handleFrame(ctx, s, data)
	}
}

// register adds conn to the registry unless the handler is shutting down. It
// returns the channel conn displaced, if any.
func (h *SessionHandler) register(clientID string, conn *Connection) (Channel, bool) {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	if h.closing.Load() {
		return nil, false
	}
	h.sessions.Add(1)
	return h.registry.Connect(clientID, conn), true
}

// end tears a session down exactly once. Only a session that still owns its
// registry entry announces the departure, so a replaced session exits quietly.
func (h *SessionHandler) end(ctx context.Context, s *session) {
	s.once.Do(func() {
		_ = s.conn.Close()
		h.metrics.ConnectionClosed(ctx)

		if !h.registry.Release(s.clientID, s.conn) {
			s.log.Info("Superseded session closed")
			return
		}
		if h.closing.Load() {
			s.log.Info("Client disconnected during shutdown")
			return
		}

		delivered := h.registry.Broadcast([]byte(DepartureNotice(s.clientID)), s.clientID)
		s.log.Info("Client disconnected", "notified", delivered)
	})
}

func (h *SessionHandler) handleFrame(ctx context.Context, s *session, data []byte) {
	ctx, span := h.tracer.Start(ctx, "ws.frame",
		trace.WithAttributes(attribute.String("client.id", s.clientID)))
	defer span.End()

	var in inboundFrame
	if err := json.Unmarshal(data, &in); err != nil {
		h.drop(ctx, s, span, dropInvalidJSON, err)
		return
	}
	if in.Type == "" {
		h.drop(ctx, s, span, dropMissingType, nil)
		return
	}
	if in.Type != frameTypeMessage {
		s.log.Debug("Ignoring frame", "type", in.Type)
		return
	}
	if in.Content == nil {
		h.drop(ctx, s, span, dropMissingContent, nil)
		return
	}

	sender := models.SenderUser
	if in.Sender != "" {
		sender = models.Sender(in.Sender)
		if !sender.Valid() {
			h.drop(ctx, s, span, dropUnknownSender, nil)
			return
		}
	}

	label := emotion.Label(in.Emotion)
	if label == "" {
		label = h.classifier.Classify(*in.Content)
	}

	msg := models.Message{
		Content:   *in.Content,
		Sender:    sender,
		Timestamp: h.now(),
		Emotion:   label,
	}
	h.metrics.MessageReceived(ctx, string(label))
	span.SetAttributes(attribute.String("message.emotion", string(label)))

	if in.ConversationID != nil && *in.ConversationID != "" {
		span.SetAttributes(attribute.String("conversation.id", *in.ConversationID))
		if err := h.conversations.Append(ctx, *in.ConversationID, msg); err != nil {
			if errors.Is(err, store.ErrConversationNotFound) {
				s.log.Warn("Message for unknown conversation not stored", "conversation_id", *in.ConversationID)
			} else {
				span.RecordError(err)
				s.log.LogError(err, "Failed to append message", "conversation_id", *in.ConversationID)
			}
		}
	}

	payload, err := json.Marshal(outboundFrame{
		Type:           frameTypeMessage,
		Message:        msg,
		ConversationID: in.ConversationID,
	})
	if err != nil {
		s.log.LogError(err, "Failed to encode confirmation")
		return
	}
	if err := h.registry.Send(s.clientID, payload); err != nil {
		s.log.Warn("Confirmation not delivered", "error", err.Error())
	}
}

func (h *SessionHandler) drop(ctx context.Context, s *session, span trace.Span, reason string, err error) {
	h.metrics.FrameDropped(ctx, reason)
	span.SetStatus(codes.Error, reason)
	attrs := []any{"reason", reason}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	s.log.Warn("Dropping malformed frame", attrs...)
}

// Shutdown stops accepting sessions, closes every registered connection and
// waits for the read loops to finish or ctx to expire
func (h *SessionHandler) Shutdown(ctx context.Context) error {
	h.lifecycle.Lock()
	h.closing.Store(true)
	h.lifecycle.Unlock()

	h.registry.CloseAll()

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
