// Package metrics defines the Prometheus metrics exported by linkcard.
//
// All metrics are registered with the default registry via promauto and are
// exposed on the /metrics endpoint. Metric names are prefixed with
// "linkcard_".
package metrics
