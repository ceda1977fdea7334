// Package metric exports writer and reader metrics to Prometheus.
package metric
