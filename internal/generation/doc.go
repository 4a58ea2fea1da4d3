// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services for vocabulary content generation. It abstracts
// the details of LLM API integration (Gemini), allowing the application to
// enrich vocab entries and judge answer equivalence without coupling to
// specific external services.
package generation
