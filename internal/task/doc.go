// Package task provides background task processing: a buffered task queue, a
// worker pool that drains it, and the enrichment task that warms the AI
// content cache after a vocab entry is created.
package task
