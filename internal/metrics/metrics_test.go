package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.GetCounter().GetValue()
	case out.Gauge != nil:
		return out.GetGauge().GetValue()
	}
	return 0
}

func TestObserveGeminiCall(t *testing.T) {
	before := value(t, GeminiCallsTotal.WithLabelValues("spell_check", "ok"))
	inBefore := value(t, GeminiTokensTotal.WithLabelValues("input"))

	ObserveGeminiCall("spell_check", "ok", 120, 0)

	if got := value(t, GeminiCallsTotal.WithLabelValues("spell_check", "ok")); got != before+1 {
		t.Errorf("calls = %v, want %v", got, before+1)
	}
	if got := value(t, GeminiTokensTotal.WithLabelValues("input")); got != inBefore+120 {
		t.Errorf("input tokens = %v, want %v", got, inBefore+120)
	}
}

func TestMiddlewareCountsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := value(t, HTTPRequestTotals.WithLabelValues("GET", "/items/:id", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	if got := value(t, HTTPRequestTotals.WithLabelValues("GET", "/items/:id", "204")); got != before+1 {
		t.Errorf("request total = %v, want %v", got, before+1)
	}
	if got := value(t, HTTPRequestInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}
