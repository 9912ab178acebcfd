package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelHooks implements every hook interface on top of an OpenTelemetry
// meter. Without an installed meter provider the instruments are no-ops.
type OTelHooks struct {
	gestures        metric.Int64Counter
	gestureDuration metric.Float64Histogram
	selected        metric.Int64Histogram
	layouts         metric.Int64Counter
	layoutDuration  metric.Float64Histogram
	providerCalls   metric.Int64Counter
	providerLatency metric.Float64Histogram
	cacheLookups    metric.Int64Counter
	cacheBytes      metric.Int64Counter
}

var (
	_ LassoHooks    = (*OTelHooks)(nil)
	_ LayoutHooks   = (*OTelHooks)(nil)
	_ ProviderHooks = (*OTelHooks)(nil)
	_ CacheHooks    = (*OTelHooks)(nil)
)

// NewOTelHooks creates the instruments on meter.
func NewOTelHooks(meter metric.Meter) (*OTelHooks, error) {
	var h OTelHooks
	var err error
	if h.gestures, err = meter.Int64Counter("lassoview.lasso.gestures",
		metric.WithDescription("Lasso gestures by outcome")); err != nil {
		return nil, err
	}
	if h.gestureDuration, err = meter.Float64Histogram("lassoview.lasso.duration",
		metric.WithDescription("Time from press to release"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if h.selected, err = meter.Int64Histogram("lassoview.lasso.selected",
		metric.WithDescription("Markers selected per completed gesture")); err != nil {
		return nil, err
	}
	if h.layouts, err = meter.Int64Counter("lassoview.layout.runs"); err != nil {
		return nil, err
	}
	if h.layoutDuration, err = meter.Float64Histogram("lassoview.layout.duration",
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if h.providerCalls, err = meter.Int64Counter("lassoview.provider.requests"); err != nil {
		return nil, err
	}
	if h.providerLatency, err = meter.Float64Histogram("lassoview.provider.duration",
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if h.cacheLookups, err = meter.Int64Counter("lassoview.cache.lookups"); err != nil {
		return nil, err
	}
	if h.cacheBytes, err = meter.Int64Counter("lassoview.cache.written",
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	return &h, nil
}

// Register installs h for every hook category.
func (h *OTelHooks) Register() {
	SetLassoHooks(h)
	SetLayoutHooks(h)
	SetProviderHooks(h)
	SetCacheHooks(h)
}

func (h *OTelHooks) OnGestureStart(surface string) {
	h.gestures.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("surface", surface), attribute.String("outcome", "start")))
}

func (h *OTelHooks) OnGestureEnd(surface string, pathLen, selected int, d time.Duration) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("surface", surface))
	h.gestures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("surface", surface), attribute.String("outcome", "end")))
	h.gestureDuration.Record(ctx, d.Seconds(), attrs)
	h.selected.Record(ctx, int64(selected), attrs)
}

func (h *OTelHooks) OnGestureCancel(surface string) {
	h.gestures.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("surface", surface), attribute.String("outcome", "cancel")))
}

func (h *OTelHooks) OnLayoutStart(ctx context.Context, engine string, nodes int) {
	h.layouts.Add(ctx, 1, metric.WithAttributes(attribute.String("engine", engine)))
}

func (h *OTelHooks) OnLayoutComplete(ctx context.Context, engine string, d time.Duration, err error) {
	h.layoutDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("engine", engine), attribute.Bool("error", err != nil)))
}

func (h *OTelHooks) OnRequest(ctx context.Context, action string) {
	h.providerCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

func (h *OTelHooks) OnResponse(ctx context.Context, action string, d time.Duration, err error) {
	h.providerLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("action", action), attribute.Bool("error", err != nil)))
}

func (h *OTelHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType), attribute.Bool("hit", true)))
}

func (h *OTelHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType), attribute.Bool("hit", false)))
}

func (h *OTelHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.cacheBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("key_type", keyType)))
}
