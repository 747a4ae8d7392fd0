package anchor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// region Metrics //////////////////////////////////////////////////////////////////////////////////////////////////////

// Metrics holds the prometheus counters of the publishing pipeline.
type Metrics struct {
	// BlocksSubmitted counts the Blocks submitted to the network.
	BlocksSubmitted prometheus.Counter

	// BlocksPromoted counts the promotions issued while waiting for inclusion.
	BlocksPromoted prometheus.Counter

	// BlocksReattached counts the reattachments issued while waiting for inclusion.
	BlocksReattached prometheus.Counter

	// BlocksIncluded counts the Blocks observed as included.
	BlocksIncluded prometheus.Counter

	// InclusionTimeouts counts the publish operations that exhausted their retry budget.
	InclusionTimeouts prometheus.Counter
}

// NewMetrics creates the counters and registers them with the given registerer. A nil registerer leaves the counters
// unregistered, which keeps them usable in tests.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didanchor",
			Name:      "blocks_submitted_total",
			Help:      "Number of blocks submitted to the network.",
		}),
		BlocksPromoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didanchor",
			Name:      "blocks_promoted_total",
			Help:      "Number of promotions issued while waiting for inclusion.",
		}),
		BlocksReattached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didanchor",
			Name:      "blocks_reattached_total",
			Help:      "Number of reattachments issued while waiting for inclusion.",
		}),
		BlocksIncluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didanchor",
			Name:      "blocks_included_total",
			Help:      "Number of blocks observed as included.",
		}),
		InclusionTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didanchor",
			Name:      "inclusion_timeouts_total",
			Help:      "Number of publish operations that exhausted their retry budget.",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(m.BlocksSubmitted, m.BlocksPromoted, m.BlocksReattached, m.BlocksIncluded, m.InclusionTimeouts)
	}

	return m
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
