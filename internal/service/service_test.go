package service

import (
	"io"
	"log/slog"
	"time"

	"pilketos/internal/logging"
)

var fixedNow = time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return logging.New(io.Discard, time.UTC)
}

func clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
