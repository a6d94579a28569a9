// Package batch runs a worklist of items through a caller-supplied function in
// fixed-size batches.
//
// Items inside a batch run sequentially or through a bounded worker pool.
// Transient failures are retried with capped exponential backoff, every other
// failure is recorded against the item and the run continues. An optional
// Freshness store lets the runner skip items synced inside a recent window.
package batch
