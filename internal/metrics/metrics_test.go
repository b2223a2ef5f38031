package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/elys-network/basket/internal/fpdecimal"
)

func TestObserveQuote(t *testing.T) {
	before := testutil.ToFloat64(QuotesTotal.WithLabelValues("MINT", OutcomeExecuted))
	ObserveQuote("MINT", OutcomeExecuted, fpdecimal.MustParse("0.02"))
	assert.Equal(t, before+1, testutil.ToFloat64(QuotesTotal.WithLabelValues("MINT", OutcomeExecuted)))

	rejected := testutil.ToFloat64(QuotesTotal.WithLabelValues("REDEEM", OutcomeRejected))
	RejectQuote("REDEEM")
	assert.Equal(t, rejected+1, testutil.ToFloat64(QuotesTotal.WithLabelValues("REDEEM", OutcomeRejected)))
}

func TestFloat(t *testing.T) {
	assert.InDelta(t, -0.125, Float(fpdecimal.MustParse("-0.125")), 1e-12)
	assert.InDelta(t, 1e6, Float(fpdecimal.New(1_000_000)), 1e-6)
}

func TestMiddleware(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/quotes/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/quotes/{id}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
