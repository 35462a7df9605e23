package realtime

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pilketos/internal/logging"
)

func TestHubCoalescesSignals(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	h.Publish()
	h.Publish()
	h.Publish()

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-ch:
		t.Fatal("expected signals to coalesce")
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe()
	_, other := h.Subscribe()
	defer other()
	assert.Equal(t, 2, h.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, h.Len())

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
	assert.NotPanics(t, h.Publish)
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe()
	h.Publish()

	h.Close()
	h.Close()

	_, ok := <-ch
	assert.True(t, ok, "pending signal is still delivered")
	_, ok = <-ch
	assert.False(t, ok)
	assert.NotPanics(t, unsubscribe)
	assert.Equal(t, 0, h.Len())

	late, _ := h.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

type fakeConn struct {
	mu       sync.Mutex
	execs    []string
	notes    chan *pgconn.Notification
	closed   bool
	execErr  error
	failWait error
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	if f.failWait != nil {
		return nil, f.failWait
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case n := <-f.notes:
		return n, nil
	}
}

func (f *fakeConn) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newTestListener(hub *Hub, connect func(context.Context, string) (notifyConn, error)) *Listener {
	l := NewListener("postgres://test", "election_changes", hub, logging.New(&bytes.Buffer{}, time.UTC))
	l.connect = connect
	l.minBackoff = time.Millisecond
	l.maxBackoff = 4 * time.Millisecond
	return l
}

func TestListenerForwardsNotifications(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	conn := &fakeConn{notes: make(chan *pgconn.Notification)}
	l := newTestListener(hub, func(context.Context, string) (notifyConn, error) { return conn, nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// Initial signal after LISTEN succeeds.
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no initial signal")
	}

	conn.notes <- &pgconn.Notification{Channel: "election_changes", Payload: "votes"}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("notification not forwarded")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Equal(t, []string{`LISTEN "election_changes"`}, conn.execs)
	assert.True(t, conn.closed)
}

func TestListenerReconnects(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	var mu sync.Mutex
	attempts := 0
	l := newTestListener(hub, func(context.Context, string) (notifyConn, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		switch attempts {
		case 1:
			return nil, errors.New("connection refused")
		case 2:
			return &fakeConn{failWait: errors.New("conn closed")}, nil
		default:
			return &fakeConn{notes: make(chan *pgconn.Notification)}, nil
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 3
	}, time.Second, time.Millisecond)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a signal after reconnect")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestListenerResetsBackoffAfterListening(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	var waits []time.Duration

	l := newTestListener(NewHub(), func(context.Context, string) (notifyConn, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		switch attempts {
		case 1, 2, 3, 5:
			return nil, errors.New("connection refused")
		case 4:
			return &fakeConn{failWait: errors.New("conn closed")}, nil
		default:
			return &fakeConn{notes: make(chan *pgconn.Notification)}, nil
		}
	})
	l.wait = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		waits = append(waits, d)
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 6
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	ms := time.Millisecond
	assert.Equal(t, []time.Duration{1 * ms, 2 * ms, 4 * ms, 1 * ms, 2 * ms}, waits)
}
