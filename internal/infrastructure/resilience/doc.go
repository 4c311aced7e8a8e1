/*
Package resilience provides a circuit breaker for calls to the service gateway
and the app orchestrator.

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure] -> Open

A tripped breaker fails fast with ErrCircuitOpen; the tool executor turns that
into an isolated tool failure like any other.

	breaker := resilience.New("service-gateway", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Post(url)
	})
*/
package resilience
