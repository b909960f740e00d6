// Package observability wires OpenTelemetry tracing and metrics for
// apiclient.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//	client, err := apiclient.New(apiCfg, apiclient.WithMetrics(metrics))
package observability
