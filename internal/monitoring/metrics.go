package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicketsSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lts_tickets_sold_total",
		Help: "Tickets sold through confirmed buy transactions.",
	})

	TicketsUsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lts_tickets_used_total",
		Help: "Tickets marked used (terminal state).",
	})

	BidsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lts_bids_accepted_total",
		Help: "Bids that won the price compare-and-swap.",
	})

	BidsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lts_bids_rejected_total",
		Help: "Bids rejected, by reason.",
	}, []string{"reason"})

	AuctionsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lts_auctions_registered_total",
		Help: "Auctions registered off-chain after anchoring.",
	})

	UnregisteredAnchors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lts_unregistered_anchors",
		Help: "Auctions anchored on-chain with no off-chain registration.",
	})

	ReviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lts_reviews_created_total",
		Help: "Reviews accepted after signature and ticket checks.",
	})

	GatewayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lts_ipfs_gateway_failures_total",
		Help: "Failed IPFS gateway fetch attempts, by gateway.",
	}, []string{"gateway"})
)
