// Package service contains the application use cases that sit between the
// HTTP layer and the stores: creating vocab entries (with the duplicate
// re-add path) and kicking off background enrichment.
package service
