// Package gemini provides an implementation of the classify.TopicClassifier
// interface that uses Google's Gemini API for assigning topics to text.
//
// This package is an infrastructure adapter: it connects the analysis
// handlers to Google's external model service without exposing the details
// of the external service to the core application. It formats classification
// prompts, requests structured JSON output, validates responses against the
// expected schema, and translates API failures into the classify package's
// sentinel errors, retrying transient ones with exponential backoff.
//
// The package depends on Google's google.golang.org/genai client library
// for communicating with the Gemini API.
package gemini
