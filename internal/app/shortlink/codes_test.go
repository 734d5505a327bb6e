package shortlink

import (
	"errors"
	"math"
	"testing"

	"base62num.local/base62"
	"base62num.local/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCodeOfIDOfRoundTrip(t *testing.T) {
	for _, id := range []int64{0, 1, 61, 62, 123, 1 << 32, math.MaxInt64} {
		code := CodeOf(id)
		got, err := IDOf(code)
		if err != nil {
			t.Fatalf("IDOf(%q): %v", code, err)
		}
		if got != id {
			t.Fatalf("IDOf(CodeOf(%d)): got %d", id, got)
		}
	}
	if got := CodeOf(123); got != "B9" {
		t.Fatalf("CodeOf(123): got %q, want %q", got, "B9")
	}
}

func TestIDOfRejects(t *testing.T) {
	cases := []struct {
		code   string
		reason string
		cause  error
	}{
		{"", ReasonEmpty, base62.ErrEmpty},
		{"B9!", ReasonInvalidCharacter, base62.ErrInvalidCharacter},
		{"V8qRkBGKRiQ", ReasonOverflow, base62.ErrOverflow},
		{"K9VIxAiFIwI", ReasonOverflow, nil},
		{"AB9", ReasonNonCanonical, nil},
	}
	for _, c := range cases {
		counter := metrics.CodecDecodeFailures.WithLabelValues(c.reason)
		before := testutil.ToFloat64(counter)

		_, err := IDOf(c.code)
		if !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("IDOf(%q): got %v, want ErrInvalidCode", c.code, err)
		}
		if c.cause != nil && !errors.Is(err, c.cause) {
			t.Fatalf("IDOf(%q): got %v, want wrapping %v", c.code, err, c.cause)
		}
		if got := testutil.ToFloat64(counter); got != before+1 {
			t.Fatalf("IDOf(%q): %s counter got %v, want %v", c.code, c.reason, got, before+1)
		}
	}
}

func TestIDOfMaxInt64(t *testing.T) {
	got, err := IDOf("K9VIxAiFIwH")
	if err != nil || got != math.MaxInt64 {
		t.Fatalf("IDOf(MaxInt64 code): got %d,%v", got, err)
	}
	if got, err := IDOf("A"); err != nil || got != 0 {
		t.Fatalf("IDOf(\"A\"): got %d,%v", got, err)
	}
}

func TestReason(t *testing.T) {
	if got := Reason(errors.New("other")); got != "" {
		t.Fatalf("Reason(other): got %q", got)
	}
	_, err := base62.Parse("V8qRkBGKRiQ")
	if got := Reason(err); got != ReasonOverflow {
		t.Fatalf("Reason(overflow): got %q", got)
	}
}
