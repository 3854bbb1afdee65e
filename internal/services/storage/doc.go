// Package storage uploads recipe photos to an S3-compatible object store and
// derives the public URL the rest of the pipeline keys on.
package storage
