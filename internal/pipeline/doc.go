// Package pipeline drives each queued photo through upload, analysis and
// persistence. Items advance through a fixed set of stages one at a time;
// a failed item is marked and never blocks the rest of the batch.
package pipeline
