/*
Package observability provides tools for monitoring the scribe engine.

Metrics exposes Prometheus counters and histograms for runs and steps, and
Trail records the steps each run visited. Both plug into the engine as
domain.LifecycleHooks:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	trail := observability.NewTrail()
	hooks := domain.ChainHooks(metrics.Hooks(), trail.Hooks())
*/
package observability
