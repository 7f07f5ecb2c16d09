package integration

import (
	"net/http"
	"testing"
	"time"
)

// TestHealthEndpoints checks liveness and readiness of a running storefront.
// If the service is unreachable the tests are skipped, allowing the suite to
// run in environments where the stack is not up.
func TestHealthEndpoints(t *testing.T) {
	client := &http.Client{Timeout: 3 * time.Second}

	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get(baseURL() + path)
			if err != nil {
				t.Skipf("storefront not reachable: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("%s returned %d, want 200", path, resp.StatusCode)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	skipIfNotRunning(t)

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(baseURL() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics returned %d, want 200", resp.StatusCode)
	}
}
