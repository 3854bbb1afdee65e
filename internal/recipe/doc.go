// Package recipe defines the structured recipe record and the extractor that
// builds one from a vision model's labeled-section text response.
package recipe
