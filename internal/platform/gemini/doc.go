// Package gemini implements the generation.Provider interface using Google's
// Gemini API. It handles prompt construction, JSON-mode response parsing, and
// bounded retry with exponential backoff for transient failures.
package gemini
