package telemetry

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

// TestMetricsExist verifies key metric names are declared in metrics.go.
func TestMetricsExist(t *testing.T) {
	expectedMetrics := []string{
		"huginn_api_request_duration_seconds",
		"huginn_api_requests_total",
		"huginn_api_active_connections",
		"huginn_smart_playlist_evaluations_total",
		"huginn_smart_playlist_evaluation_duration_seconds",
		"huginn_smart_playlist_evaluation_matches",
		"huginn_playlists_total",
		"huginn_database_query_duration_seconds",
		"huginn_database_errors_total",
	}

	data, err := os.ReadFile("metrics.go")
	if err != nil {
		t.Fatalf("Failed to read metrics.go: %v", err)
	}

	content := string(data)
	for _, metric := range expectedMetrics {
		if !strings.Contains(content, metric) {
			t.Errorf("Expected metric '%s' not found in metrics.go", metric)
		}
	}
}

// TestHandlerServesEvaluationMetrics checks the metrics endpoint exposes
// evaluation counters after an observation.
func TestHandlerServesEvaluationMetrics(t *testing.T) {
	ObserveEvaluation(3, 5*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "huginn_smart_playlist_evaluations_total") {
		t.Error("evaluation counter not exposed on /metrics")
	}
}
