package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(NewsCache.WithLabelValues("hit"))
	NewsCache.WithLabelValues("hit").Inc()
	if got := testutil.ToFloat64(NewsCache.WithLabelValues("hit")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestHandlerExposesInsightMetrics(t *testing.T) {
	InsightGenerations.WithLabelValues("success").Inc()
	SectionsParsed.Observe(4)
	ScoreAdjustmentDelta.WithLabelValues("risk").Observe(-1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"insight_generations_total", "insight_sections_parsed_bucket", `insight_score_adjustment_delta_bucket{kind="risk",le="-1"}`} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in exposition", name)
		}
	}
}
