// Package metrics records compilation statistics with Prometheus collectors.
//
// Every Collector owns its own registry. The compile service writes it as a
// node-exporter textfile after each run, so the counts can be scraped
// without the compiler serving HTTP.
package metrics
