package messaging

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestMessageCarrier(t *testing.T) {
	msg := kafka.Message{}
	c := NewMessageCarrier(&msg)

	if got := c.Get("traceparent"); got != "" {
		t.Fatalf("expected empty value for unset key, got %q", got)
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("expected round-trip, got %q", got)
	}

	c.Set("traceparent", "00-abc-def-02")
	if got := c.Get("traceparent"); got != "00-abc-def-02" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if len(msg.Headers) != 1 {
		t.Fatalf("expected overwrite to reuse the header, got %d headers", len(msg.Headers))
	}

	c.Set("baggage", "tenant=main")
	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "traceparent" || keys[1] != "baggage" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
