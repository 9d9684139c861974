// Package prom exports hfcand metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := prom.NewCollector(reg, prom.WithNamespace("hfcand"))
//	c, err := hfcand.New(cfg, hfcand.WithMetricsCollector(mc))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom
