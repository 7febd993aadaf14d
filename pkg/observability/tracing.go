package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer provides distributed tracing capabilities. A disabled tracer runs
// traced functions directly, which keeps local runs free of daemon traffic.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

// Enabled reports whether segments are emitted.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// Trace runs fn inside a subsegment of the current segment, or inside a new
// segment when ctx carries none.
func (t *Tracer) Trace(ctx context.Context, name string, fn func(context.Context) error) error {
	if !t.Enabled() {
		return fn(ctx)
	}

	var seg *xray.Segment
	if xray.GetSegment(ctx) == nil {
		ctx, seg = xray.BeginSegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	} else {
		ctx, seg = xray.BeginSubsegment(ctx, name)
	}

	err := fn(ctx)
	seg.Close(err)
	return err
}

// AddMetadata adds metadata to the current segment
func (t *Tracer) AddMetadata(ctx context.Context, key string, value interface{}) {
	if !t.Enabled() {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddMetadata(key, value)
	}
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value string) {
	if !t.Enabled() {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}
