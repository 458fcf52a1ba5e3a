// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes prometheus meters of the ledger and the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakepoint"

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_ops_total",
		Help:      "ledger operations by kind and outcome",
	}, []string{"kind", "outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "API request durations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method"})
)

// CountOp counts a ledger operation outcome.
func CountOp(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "err"
	}
	opsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveHTTP records the duration of an API request in seconds.
func ObserveHTTP(path, method string, seconds float64) {
	httpDuration.WithLabelValues(path, method).Observe(seconds)
}

// HTTPHandler returns the handler serving the metrics endpoint.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
