package httpclient

import "errors"

// ErrCircuitOpen is returned when the circuit breaker rejects a request
// because the upstream is considered unhealthy.
var ErrCircuitOpen = errors.New("httpclient: circuit breaker open")
