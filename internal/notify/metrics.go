package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noticesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "identity_service",
			Name:      "verification_notices_total",
			Help:      "Verification notices by outcome",
		},
		[]string{"outcome"}, // sent, failed, dropped, duplicate
	)

	noticeRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "identity_service",
			Name:      "verification_notice_retries_total",
			Help:      "Retried verification notice deliveries",
		},
	)

	noticeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "identity_service",
			Name:      "verification_notice_queue_depth",
			Help:      "Verification notices waiting for a worker",
		},
	)
)

const (
	outcomeSent      = "sent"
	outcomeFailed    = "failed"
	outcomeDropped   = "dropped"
	outcomeDuplicate = "duplicate"
)
