package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type notifyConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Listener holds a dedicated connection on LISTEN and forwards every
// notification on its channel to the hub.
type Listener struct {
	dsn     string
	channel string
	hub     *Hub
	logger  *slog.Logger

	connect    func(ctx context.Context, dsn string) (notifyConn, error)
	wait       func(ctx context.Context, d time.Duration) error
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewListener(dsn, channel string, hub *Hub, logger *slog.Logger) *Listener {
	return &Listener{
		dsn:     dsn,
		channel: channel,
		hub:     hub,
		logger:  logger.With("component", "realtime", "channel", channel),
		connect: func(ctx context.Context, dsn string) (notifyConn, error) {
			return pgx.Connect(ctx, dsn)
		},
		wait:       sleep,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is done, reconnecting with capped exponential backoff.
// The backoff starts over after every connection that reached LISTEN.
// It always returns ctx.Err().
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		listening, err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if listening {
			backoff = l.minBackoff
		}
		l.logger.Warn("realtime_listen_failed", "error", err.Error(), "retry_in_ms", backoff.Milliseconds())

		if err := l.wait(ctx, backoff); err != nil {
			return err
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// listen reports whether LISTEN succeeded before the connection ended.
func (l *Listener) listen(ctx context.Context) (bool, error) {
	conn, err := l.connect(ctx, l.dsn)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	l.logger.Info("realtime_listening")

	// Anything may have changed while disconnected.
	l.hub.Publish()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return true, err
			}
			return true, fmt.Errorf("wait for notification: %w", err)
		}
		l.logger.Debug("realtime_notification", "table", n.Payload)
		l.hub.Publish()
	}
}
