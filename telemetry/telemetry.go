// Package telemetry collects hierarchical timings and named counters for a
// migration run.
//
// Collectors travel through context, so instrumented code never needs an
// extra parameter and pays nothing when telemetry is off:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := collector.Start("migrate 3 files")
//	ctx = telemetry.WithRootTimer(ctx, timer)
//
//	scan := telemetry.StartTimer(ctx, "rewrite.scan")
//	// ... work ...
//	scan.End()
//	telemetry.Count(ctx, "rewrites", 12)
//
//	timer.End()
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"

	"github.com/HandmadeMath/HandmadeMath-sub000/output"
)

type contextKey int

const (
	collectorKey contextKey = iota
	rootTimerKey
)

// Collector gathers timings and counters.
type Collector interface {
	// Start begins timing an operation at the current nesting level.
	Start(name string) Timer

	// Count adds n to the named counter.
	Count(name string, n int)

	// Report writes the collected data. styles may be nil for plain text.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector in ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer returns a context whose StartTimer calls nest under timer.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey, timer)
}

// StartTimer starts a timer under the root timer in ctx if there is one,
// otherwise directly on the collector.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := ctx.Value(rootTimerKey).(Timer); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}

// Count adds n to the named counter of the collector in ctx.
func Count(ctx context.Context, name string, n int) {
	FromContext(ctx).Count(name, n)
}
