package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestChoicesSavedCounter(t *testing.T) {
	before := testutil.ToFloat64(ChoicesSaved.WithLabelValues("week"))
	ChoicesSaved.WithLabelValues("week").Add(3)
	if got := testutil.ToFloat64(ChoicesSaved.WithLabelValues("week")); got != before+3 {
		t.Errorf("期望计数增加 3，实际 %v -> %v", before, got)
	}
}

func TestHandler(t *testing.T) {
	ChoicesRejected.WithLabelValues("unknown_item").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lunch_choices_rejected_total") {
		t.Error("输出中应包含 lunch_choices_rejected_total")
	}
}
