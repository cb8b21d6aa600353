package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCheck(t *testing.T) {
	before := testutil.ToFloat64(ChecksTotal.WithLabelValues("google", OutcomeFound))
	beforeErr := testutil.ToFloat64(ChecksTotal.WithLabelValues("baidu", OutcomeError))

	RecordCheck("google", OutcomeFound, 3*time.Second, 2)
	RecordCheck("baidu", OutcomeError, time.Second, 0)

	if got := testutil.ToFloat64(ChecksTotal.WithLabelValues("google", OutcomeFound)); got != before+1 {
		t.Errorf("google found = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(ChecksTotal.WithLabelValues("baidu", OutcomeError)); got != beforeErr+1 {
		t.Errorf("baidu error = %v, want %v", got, beforeErr+1)
	}
}

func TestHandler(t *testing.T) {
	RecordCheck("google", OutcomeNotFound, time.Second, 10)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"rankcheck_checks_total", "rankcheck_check_duration_seconds", "rankcheck_pages_visited"} {
		if !strings.Contains(body, name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}
