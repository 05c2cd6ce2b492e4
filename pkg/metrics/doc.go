/*
Package metrics provides Prometheus metrics for the agent manager, the
versioned store, and the plugin host: task counts and outcomes per agent,
retry-delay gauges, run-duration histograms, store revision write/prune
counters, and a plugin-count gauge. Timer is a small helper for observing
elapsed wall-clock time into a histogram.
*/
package metrics
