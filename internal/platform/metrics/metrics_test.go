package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if err := prometheus.Register(LinksCreated); err == nil {
		t.Fatal("LinksCreated should already be registered")
	}
}

func TestDecodeFailuresByReason(t *testing.T) {
	before := testutil.ToFloat64(CodecDecodeFailures.WithLabelValues("overflow"))
	CodecDecodeFailures.WithLabelValues("overflow").Inc()
	if got := testutil.ToFloat64(CodecDecodeFailures.WithLabelValues("overflow")); got != before+1 {
		t.Fatalf("overflow failures: got %v, want %v", got, before+1)
	}
}
