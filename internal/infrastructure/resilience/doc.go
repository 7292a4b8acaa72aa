/*
Package resilience provides a circuit breaker for upstream calls.

The GitHub repositories data source runs every fetch through a Breaker so a
GitHub outage fails fast instead of stalling each desktop that opens the
GitHub panel.

# Usage

	breaker := resilience.New("github", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(ctx, func(ctx context.Context) error {
		return fetch(ctx)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

Errors caused by context cancellation are neutral: the caller went away,
the upstream did not fail.
*/
package resilience
