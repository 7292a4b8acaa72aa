// Package github fetches the repositories shown by the GitHub window: the
// user's own repositories merged with repositories they recently pushed
// to. Calls go through resty over a retrying transport, a rate limiter
// and a circuit breaker, and results are cached for a short TTL.
package github
