// Package observability wires OpenTelemetry tracing and metrics.
//
// Export is enabled by setting an OTLP HTTP endpoint; without one the
// global no-op providers stay installed and instrumentation costs nothing:
//
//	comp := observability.NewComponent(observability.Config{
//	    ServiceName: "backend-template",
//	    Endpoint:    "localhost:4318",
//	    Insecure:    true,
//	}, log)
//	registry.Register(comp)
//
// Storage operations and HTTP requests record spans on Tracer() and
// instruments from Metrics.
package observability
