package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"pilketos/internal/metrics"
	"pilketos/internal/realtime"
	"pilketos/internal/service"
)

const statsTimeout = 5 * time.Second

// PublicResults shows the final tally once the election has closed.
//
// @Summary  Final results
// @Tags     election
// @Produce  json
// @Success  200 {object} model.VotingStats
// @Failure  403 {object} errorPayload
// @Router   /results [get]
func PublicResults(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.PublicResults(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(st)
	}
}

// Stats returns live turnout and per-candidate shares.
//
// @Summary   Live statistics
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} model.VotingStats
// @Router    /admin/stats [get]
func Stats(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(st)
	}
}

// candidateFilter parses ?candidate=N; empty means every candidate.
func candidateFilter(c *fiber.Ctx) (int, bool) {
	raw := c.Query("candidate")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ListVoters lists who voted, optionally for a single candidate number.
//
// @Summary   List voters
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Param     candidate query int false "Candidate number"
// @Success   200 {object} map[string][]model.VoterEntry
// @Router    /admin/voters [get]
func ListVoters(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, ok := candidateFilter(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CANDIDATE", "candidate must be a candidate number")
		}
		items, err := svc.Voters(c.UserContext(), n)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// ExportVoters downloads the voters list as CSV.
//
// @Summary   Export voters
// @Tags      admin
// @Produce   text/csv
// @Security  BearerAuth
// @Param     candidate query int false "Candidate number"
// @Success   200 {file} file
// @Router    /admin/voters/export [get]
func ExportVoters(svc service.ResultService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, ok := candidateFilter(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CANDIDATE", "candidate must be a candidate number")
		}

		var buf bytes.Buffer
		if err := svc.ExportVotersCSV(c.UserContext(), &buf, n); err != nil {
			return serviceError(c, err)
		}

		name := "voters.csv"
		if n > 0 {
			name = fmt.Sprintf("voters-candidate-%d.csv", n)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Attachment(name)
		return c.Send(buf.Bytes())
	}
}

// StatsStream pushes statistics as Server-Sent Events: one "stats" event on
// connect and another after every change signal from the hub. A comment line
// is written every keepAlive so dead connections are noticed.
//
// @Summary   Live statistics stream
// @Tags      admin
// @Produce   text/event-stream
// @Security  BearerAuth
// @Success   200
// @Router    /admin/stats/stream [get]
func StatsStream(svc service.ResultService, hub *realtime.Hub, m *metrics.Election, keepAlive time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		// The fiber context is recycled once the handler returns; keep only its values.
		base := context.WithoutCancel(c.UserContext())
		updates, unsubscribe := hub.Subscribe()
		closed := m.StreamOpened()

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer closed()
			defer unsubscribe()

			ticker := time.NewTicker(keepAlive)
			defer ticker.Stop()

			if err := writeStats(base, w, svc); err != nil {
				return
			}
			for {
				select {
				case _, ok := <-updates:
					if !ok {
						return
					}
					if err := writeStats(base, w, svc); err != nil {
						return
					}
				case <-ticker.C:
					if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		})
		return nil
	}
}

// writeStats writes one SSE event and flushes. A failed stats query is sent
// as an "error" event; only write failures end the stream.
func writeStats(base context.Context, w *bufio.Writer, svc service.ResultService) error {
	ctx, cancel := context.WithTimeout(base, statsTimeout)
	defer cancel()

	event, payload := "stats", any(nil)
	st, err := svc.Stats(ctx)
	if err != nil {
		event, payload = "error", errorEnvelope{Code: "STATS_UNAVAILABLE", Message: "statistics temporarily unavailable"}
	} else {
		payload = st
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	return w.Flush()
}
