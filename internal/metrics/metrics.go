// Package metrics holds the election-level Prometheus collectors.
// HTTP request metrics live with the middleware that records them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Election groups the domain counters. A nil *Election is valid and records nothing.
type Election struct {
	votesCast         prometheus.Counter
	registrations     prometheus.Counter
	streamSubscribers prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Election, error) {
	m := &Election{
		votesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "election_votes_cast_total",
			Help: "Total number of ballots accepted.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "election_registrations_total",
			Help: "Total number of voter accounts created from registration codes.",
		}),
		streamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "election_stream_subscribers",
			Help: "Number of open live statistics streams.",
		}),
	}
	for _, c := range []prometheus.Collector{m.votesCast, m.registrations, m.streamSubscribers} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Election) VoteCast() {
	if m != nil {
		m.votesCast.Inc()
	}
}

func (m *Election) Registered() {
	if m != nil {
		m.registrations.Inc()
	}
}

// StreamOpened tracks an open stream; call the returned func when it closes.
func (m *Election) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.streamSubscribers.Inc()
	return m.streamSubscribers.Dec
}
