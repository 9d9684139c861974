// Package resource bounds what a Creator may use at once: worker slots for
// event processing, a memory budget for in-flight event batches, and a byte
// rate for published output.
//
// A nil *Controller is valid and imposes no limits.
package resource
