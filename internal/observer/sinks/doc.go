// Package sinks implements secondary crawl observers such as structured
// logging and Prometheus metrics. Each sink satisfies observer.Observer and
// runs alongside the console reporter through observer.Multi.
package sinks
