// Package observer defines the callback contract a crawling engine uses to
// report per-URL outcomes, and a fan-out that lets several independent
// observers (console reporter, structured logs, Prometheus) share one crawl.
package observer
