// Package api contains the HTTP handlers and request/response models for the
// vocabulary service. Handlers decode and validate requests, call into the
// service layer, and map internal errors to sanitized HTTP responses.
package api
