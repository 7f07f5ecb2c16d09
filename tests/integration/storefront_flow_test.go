package integration

import (
	"net/http"
	"testing"
)

// TestAuthFlow registers a fresh account, logs in, and reads the profile.
func TestAuthFlow(t *testing.T) {
	skipIfNotRunning(t)

	email := uniqueEmail("flow")
	password := "integration-secret-1"

	status, body := httpPost(t, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"password": password,
		"name":     "Flow Tester",
	})
	if status != http.StatusCreated {
		t.Fatalf("register returned %d: %v", status, body)
	}

	status, body = httpPost(t, "/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login returned %d: %v", status, body)
	}

	tokens, ok := data(t, body)["tokens"].(map[string]any)
	if !ok {
		t.Fatalf("login response has no tokens: %v", body)
	}
	accessToken, _ := tokens["access_token"].(string)
	if accessToken == "" {
		t.Fatal("login returned empty access token")
	}

	status, body = httpGet(t, "/api/v1/users/me", accessToken)
	if status != http.StatusOK {
		t.Fatalf("profile returned %d: %v", status, body)
	}
	if got := data(t, body)["email"]; got != email {
		t.Errorf("profile email = %v, want %s", got, email)
	}

	// Wrong password is rejected with the same generic error as an
	// unknown account.
	status, _ = httpPost(t, "/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("login with wrong password returned %d, want 401", status)
	}
}

// TestCatalogBrowsing lists products, fetches one, and exercises suggestions.
func TestCatalogBrowsing(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpGet(t, "/api/v1/products?per_page=5", "")
	if status != http.StatusOK {
		t.Fatalf("list products returned %d: %v", status, body)
	}

	products, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("list response has no data array: %v", body)
	}
	if len(products) == 0 {
		t.Skip("catalog is empty; run the seed script first")
	}

	first := products[0].(map[string]any)
	id, _ := first["id"].(string)

	status, body = httpGet(t, "/api/v1/products/"+id, "")
	if status != http.StatusOK {
		t.Fatalf("get product returned %d: %v", status, body)
	}
	if got := data(t, body)["id"]; got != id {
		t.Errorf("product id = %v, want %s", got, id)
	}

	// Single-character queries return an empty list, not an error.
	status, body = httpGet(t, "/api/v1/products/suggestions?q=a", "")
	if status != http.StatusOK {
		t.Fatalf("short suggestion query returned %d: %v", status, body)
	}
	if suggestions, ok := body["data"].([]any); ok && len(suggestions) != 0 {
		t.Errorf("short query returned %d suggestions, want 0", len(suggestions))
	}

	// Reviews are public.
	status, _ = httpGet(t, "/api/v1/products/"+id+"/reviews", "")
	if status != http.StatusOK {
		t.Errorf("list reviews returned %d, want 200", status)
	}
}

// TestAuthorizationBoundaries checks that protected and admin routes reject
// unauthenticated and under-privileged callers.
func TestAuthorizationBoundaries(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpGet(t, "/api/v1/orders", "")
	if status != http.StatusUnauthorized {
		t.Errorf("unauthenticated order list returned %d, want 401", status)
	}

	status, body := httpPost(t, "/api/v1/auth/register", "", map[string]any{
		"email":    uniqueEmail("authz"),
		"password": "integration-secret-1",
		"name":     "Authz Tester",
	})
	if status != http.StatusCreated {
		t.Fatalf("register returned %d: %v", status, body)
	}
	tokens := data(t, body)["tokens"].(map[string]any)
	accessToken := tokens["access_token"].(string)

	status, _ = httpGet(t, "/api/v1/admin/dashboard", accessToken)
	if status != http.StatusForbidden {
		t.Errorf("dashboard as regular user returned %d, want 403", status)
	}
}

// TestOrderValidation exercises server-side order validation without
// touching the gateway.
func TestOrderValidation(t *testing.T) {
	skipIfNotRunning(t)

	status, body := httpPost(t, "/api/v1/auth/register", "", map[string]any{
		"email":    uniqueEmail("order"),
		"password": "integration-secret-1",
		"name":     "Order Tester",
	})
	if status != http.StatusCreated {
		t.Fatalf("register returned %d: %v", status, body)
	}
	tokens := data(t, body)["tokens"].(map[string]any)
	accessToken := tokens["access_token"].(string)

	// An order with no items is rejected before any side effects.
	status, _ = httpPost(t, "/api/v1/orders", accessToken, map[string]any{
		"items":        []any{},
		"total_amount": 100,
		"shipping_address": map[string]any{
			"full_name":    "Order Tester",
			"address_line": "42 MG Road",
			"city":         "Bengaluru",
			"state":        "Karnataka",
			"postal_code":  "560001",
			"country":      "IN",
		},
	})
	if status != http.StatusBadRequest {
		t.Errorf("empty order returned %d, want 400", status)
	}
}
