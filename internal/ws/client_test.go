package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionSendQueue(t *testing.T) {
	// no write pump: the queue is observed directly
	c := &Connection{send: make(chan []byte, 1), done: make(chan struct{})}

	assert.NoError(t, c.Send([]byte("one")))
	assert.ErrorIs(t, c.Send([]byte("two")), ErrSendQueueFull)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send([]byte("three")), ErrConnectionClosed)

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestConnectionConfigDefaults(t *testing.T) {
	cfg := ConnectionConfig{SendBuffer: 4}.withDefaults()
	assert.Equal(t, 4, cfg.SendBuffer)
	assert.Equal(t, DefaultConnectionConfig().PongWait, cfg.PongWait)
	assert.Less(t, cfg.pingPeriod(), cfg.PongWait)
}
