package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOp(t *testing.T) {
	before := testutil.ToFloat64(operations.WithLabelValues("add", "error"))
	ObserveOp("add", errors.New("boom"))
	ObserveOp("add", nil)

	if got := testutil.ToFloat64(operations.WithLabelValues("add", "error")); got != before+1 {
		t.Errorf("add/error = %v, want %v", got, before+1)
	}
}

func TestObserveRebuildSetsRecords(t *testing.T) {
	ObserveRebuild(time.Millisecond, 42)

	if got := testutil.ToFloat64(records); got != 42 {
		t.Errorf("roster_records = %v, want 42", got)
	}
}

func TestAddValidatedIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(validatedRows.WithLabelValues(OutcomeInvalid))
	AddValidated(OutcomeInvalid, 0)
	AddValidated(OutcomeInvalid, 3)

	if got := testutil.ToFloat64(validatedRows.WithLabelValues(OutcomeInvalid)); got != before+3 {
		t.Errorf("invalid = %v, want %v", got, before+3)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveSimilarity(true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "roster_similarity_checks_total") {
		t.Error("metrics output missing roster_similarity_checks_total")
	}
}
