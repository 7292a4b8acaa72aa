/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span; outbound GitHub calls open child spans from
the request context, so a slow repositories response can be followed from
the handler down to the upstream call in the logs.

# Usage

	tracer := tracing.New("chaseos", logger.Logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "github.repos")
	defer tracer.Submit(span)

# Propagation

Trace context travels in the X-Trace-ID and X-Span-ID headers. Completed
spans are logged at debug level, failed spans at warn.
*/
package tracing
