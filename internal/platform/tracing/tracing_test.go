package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, shutdown := Setup(recorder)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "backend.me")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "backend.me", ended[0].Name())

	var service string
	for _, kv := range ended[0].Resource().Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, ServiceName, service)
}
