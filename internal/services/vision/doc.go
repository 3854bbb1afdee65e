// Package vision sends uploaded recipe photos to an OpenAI-compatible chat
// completion API and returns the model's labeled-section transcription.
package vision
