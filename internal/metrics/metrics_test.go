package metrics

import "testing"

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/", "/"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/trajectory", "/trajectory"},
		{"/trajectory/csv", "/trajectory/csv"},
		{"/trajectory/from-tle", "/trajectory/from-tle"},
		{"/trajectory/from-tle/csv", "/trajectory/from-tle/csv"},
		{"/propagation/orbit", "/propagation/orbit"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/trajectory/", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
