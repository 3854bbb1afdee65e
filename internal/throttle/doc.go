// Package throttle serializes outbound API calls through a single FIFO worker
// with a configurable minimum delay between one task's completion and the next
// task's start.
package throttle
