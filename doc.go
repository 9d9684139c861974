// Package hfcand reconstructs heavy-flavour cascade candidates.
//
// A Creator takes events (a primary vertex, reconstructed tracks, pre-selected
// two-prong composites and, for simulation, the generated particles) and
// combines every selected composite with every eligible additional track.
// Each combination is fitted to a common secondary vertex and, when the fit
// converges, emitted as a model.Candidate with its mass, decay-length errors
// and per-prong impact parameters. With truth matching enabled the Creator
// also labels candidates and generated particles against the configured decay
// chain, χc1 → J/ψ(→e⁺e⁻) π⁺ by default.
//
// # Quick Start
//
//	c, err := hfcand.New(hfcand.DefaultConfig(),
//	    hfcand.WithWorkers(8),
//	    hfcand.WithLogger(hfcand.NewTextLogger(slog.LevelInfo)),
//	)
//	if err != nil { ... }
//	defer c.Close()
//
//	res, err := c.ProcessEvent(ctx, &ev)
//	for _, cand := range res.Candidates {
//	    fmt.Println(cand.Mass, cand.ErrorDecayLength)
//	}
//
// # Streaming
//
// Run reads JSON-lines events from a recordio.Reader, processes them in
// batches on a bounded worker pool and hands every EventResult, in input
// order, to a Sink such as publish.Publisher:
//
//	r, _ := recordio.Open(ctx, store, "events.jsonl.zst", nil)
//	pub, _ := publish.New(ctx, out)
//	stats, err := c.Run(ctx, r, pub)
//	err = pub.Commit(ctx, stats)
//
// # Concurrency
//
// Events are independent. ProcessEvent is safe for concurrent use; the
// configured MetricsCollector is called from several goroutines and must be
// safe for concurrent use.
//
// # Jets
//
// With WithClusterer the Creator also tags jets around every selected
// composite. The clustering algorithm itself is supplied by the caller.
package hfcand
