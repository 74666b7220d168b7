package workers

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootledger_events_processed_total",
			Help: "Chain events handled by the scanner, by kind and outcome",
		}, []string{"kind", "outcome"})

	eventErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rootledger_event_errors_total",
			Help: "Events whose handler failed and stopped the batch",
		}, []string{"kind"})

	scannedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rootledger_scanned_block",
			Help: "Last block fully applied to the ledger",
		}, []string{"chain_id"})

	chainHead = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rootledger_chain_head_block",
			Help: "Latest block reported by the RPC",
		}, []string{"chain_id"})
)

func chainLabel(chainID int64) string {
	return strconv.FormatInt(chainID, 10)
}
