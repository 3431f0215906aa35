// Copyright 2024-2025 TrackSpace Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TotalRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wss_http_requests_total",
		Help: "Number of http requests.",
	},
	[]string{"path", "code", "method"},
)

var HttpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "wss_http_request_duration_seconds_histogram",
		Buckets: []float64{
			0.1, // 100 ms
			0.2,
			0.25,
			0.5,
			1,
			1.5,
			3,
			5,
			10,
		},
	},
	[]string{"path", "code", "method"},
)

// WorkflowSchemeMutationsTotal counts committed scheme mutations by operation and
// the layer they landed on (active record or draft).
var WorkflowSchemeMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wss_workflow_scheme_mutations_total",
		Help: "Number of committed workflow scheme mutations.",
	},
	[]string{"operation", "layer"},
)

var SchemesCleanedUp = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "wss_schemes_cleaned_up",
		Help: "Number of soft-deleted workflow schemes purged by the last cleanup run.",
	},
	[]string{},
)

func RegisterAllPrometheusApplicationMetrics() {
	prometheus.Register(TotalRequests)
	prometheus.Register(HttpDuration)
	prometheus.Register(WorkflowSchemeMutationsTotal)
	prometheus.Register(SchemesCleanedUp)
}
