package carrier

import (
	"testing"

	"github.com/shudian-next/internal/config"
)

func TestParseOrderID(t *testing.T) {
	cases := []struct {
		value string
		want  uint
		ok    bool
	}{
		{"42", 42, true},
		{"  42\n", 42, true},
		{"0", 0, false},
		{"", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"42abc", 0, false},
		{`{"order_id":42}`, 0, false},
	}
	for _, c := range cases {
		got, ok := parseOrderID([]byte(c.value))
		if got != c.want || ok != c.ok {
			t.Fatalf("parse %q want (%d,%v) got (%d,%v)", c.value, c.want, c.ok, got, ok)
		}
	}
}

func TestConsumerEnabled(t *testing.T) {
	if NewConsumer(nil, nil).Enabled() {
		t.Fatalf("nil config should be disabled")
	}
	if NewConsumer(&config.KafkaConfig{Enabled: true}, nil).Enabled() {
		t.Fatalf("enabled without brokers should be disabled")
	}
	consumer := NewConsumer(&config.KafkaConfig{
		Enabled: true,
		Brokers: []string{"127.0.0.1:9092"},
		Topic:   "shipment-status",
		GroupID: "shudian-carrier",
	}, nil)
	if !consumer.Enabled() {
		t.Fatalf("configured consumer should be enabled")
	}
}
