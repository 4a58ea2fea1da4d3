package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.Len(t, traceID, TraceIDLength*2, "trace ID should be hex encoded")

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other, "trace IDs should be unique per context")
}

func TestGetTraceIDWithoutValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", GetTraceID(context.Background()))
}
