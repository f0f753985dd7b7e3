package ws

import "errors"

var (
	// ErrSendQueueFull is returned when a connection's outbound queue has no
	// room; the payload is dropped
	ErrSendQueueFull = errors.New("ws: send queue full")
	// ErrConnectionClosed is returned when sending on a closed connection
	ErrConnectionClosed = errors.New("ws: connection closed")
)
