// Package notifications pushes batch progress events to an ntfy topic. When
// no topic is configured every call is a no-op so callers never need to guard.
package notifications
