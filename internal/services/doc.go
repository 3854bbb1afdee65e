// Package services defines the shared error taxonomy for the external
// collaborators (object storage, vision model, record store) and helpers to
// turn their failures into per-item error messages.
package services
