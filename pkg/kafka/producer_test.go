package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *captureWriter) Close() error { return nil }

func TestPublishEncodesJSON(t *testing.T) {
	w := &captureWriter{}
	reg := prometheus.NewRegistry()
	p := &Producer{writer: w, comp: "gzip", metrics: newProducerMetrics(reg)}

	if err := p.Publish(context.Background(), "runs", []byte("AAPL"), map[string]float64{"mu": 0.1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 || w.msgs[0].Topic != "runs" || string(w.msgs[0].Key) != "AAPL" {
		t.Fatalf("unexpected message %+v", w.msgs)
	}
	var got map[string]float64
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil || got["mu"] != 0.1 {
		t.Fatalf("unexpected payload %s", w.msgs[0].Value)
	}

	w.err = errors.New("broker down")
	if err := p.Publish(context.Background(), "runs", nil, "raw"); err == nil {
		t.Fatalf("expected writer error")
	}
	if n := testutil.ToFloat64(p.metrics.msgs.WithLabelValues("runs", "gzip", "error")); n != 1 {
		t.Fatalf("expected one failed publish recorded, got %v", n)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
