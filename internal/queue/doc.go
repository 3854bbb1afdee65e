// Package queue holds the ordered per-item pipeline state. The store is
// in-memory and single-writer: only the pipeline orchestrator mutates items,
// presentation layers read snapshots.
package queue
