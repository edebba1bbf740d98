package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	shipzone = "shipzone"

	quotesTotal         = "quotes_total"
	ordersTotal         = "orders_total"
	datasetRecordsCount = "dataset_records"
	datasetSkippedCount = "dataset_skipped_rows"

	// Labels
	zoneLabel    = "zone"
	outcomeLabel = "outcome"
	reasonLabel  = "reason"
)

// Outcomes recorded for quotes and orders.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

/**
* Metrics definition
**/
var quotesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: shipzone,
		Name:      quotesTotal,
		Help:      "number of shipping quotes partitioned by zone and outcome",
	},
	[]string{zoneLabel, outcomeLabel},
)

var ordersTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: shipzone,
		Name:      ordersTotal,
		Help:      "number of orders placed partitioned by outcome",
	},
	[]string{outcomeLabel},
)

var datasetRecordsMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: shipzone,
		Name:      datasetRecordsCount,
		Help:      "number of postal codes in the loaded dataset",
	},
)

var datasetSkippedMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: shipzone,
		Name:      datasetSkippedCount,
		Help:      "number of dataset rows skipped while loading, by reason",
	},
	[]string{reasonLabel},
)

func IncreaseQuotesTotalMetric(zone, outcome string) {
	quotesTotalMetric.With(prometheus.Labels{
		zoneLabel:    zone,
		outcomeLabel: outcome,
	}).Inc()
}

func IncreaseOrdersTotalMetric(outcome string) {
	ordersTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

// UpdateDatasetMetrics records the size of a freshly loaded dataset and
// the rows dropped per reason.
func UpdateDatasetMetrics(records int, skipped map[string]int) {
	datasetRecordsMetric.Set(float64(records))
	for reason, count := range skipped {
		datasetSkippedMetric.With(prometheus.Labels{reasonLabel: reason}).Set(float64(count))
	}
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(quotesTotalMetric)
	prometheus.MustRegister(ordersTotalMetric)
	prometheus.MustRegister(datasetRecordsMetric)
	prometheus.MustRegister(datasetSkippedMetric)
}
