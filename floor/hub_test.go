package floor

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	fail    bool
	closed  bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestBroadcastDeliversEnvelope(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "staff")

	hub.Broadcast(EventTableAssigned, map[string]int{"tableNumber": 5})

	require.Len(t, conn.written, 1)
	var msg struct {
		Event string         `json:"event"`
		Data  map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.written[0], &msg))
	assert.Equal(t, EventTableAssigned, msg.Event)
	assert.Equal(t, 5, msg.Data["tableNumber"])
}

func TestBroadcastDropsFailingClients(t *testing.T) {
	hub := NewHub()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Register(good, "staff")
	hub.Register(bad, "admin")

	hub.Broadcast(EventTableReleased, nil)

	assert.Equal(t, 1, hub.Count())
	assert.True(t, bad.closed)
	assert.Len(t, good.written, 1)
}

func TestUnregisterClosesConnection(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "staff")
	hub.Unregister(conn)

	assert.Equal(t, 0, hub.Count())
	assert.True(t, conn.closed)
}
