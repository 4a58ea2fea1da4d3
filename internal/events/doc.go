// Package events provides a minimal in-process event emitter used to decouple
// request handling from background work such as cache warming. Handlers run
// asynchronously; a slow or failing handler never affects the emitting request.
package events
