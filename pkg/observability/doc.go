/*
Package observability turns editor lifecycle hooks into Prometheus metrics and structured logs.

Metrics are registered on a caller supplied prometheus.Registerer so several
editors (and tests) can share or isolate registries:

	m := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Chain(m.Hooks("architecture"), observability.LogHooks(logger, "architecture"))
*/
package observability
