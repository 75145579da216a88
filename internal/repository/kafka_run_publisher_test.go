package repository

import (
	"context"
	"errors"
	"testing"

	"MonteSim/internal/domain/models"
)

type fakeProducer struct {
	topic string
	key   string
	value interface{}
	err   error
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, string(key), value
	return f.err
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaRunPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaRunPublisher(fp, "simulation-runs", nil)

	snap := models.RunSnapshot{Kind: models.RunForecast, State: models.StatePublished, Symbol: "MSFT", Method: models.MethodCAPM, ExpectedReturn: 0.1, Volatility: 0.2}
	p.OnUpdate(snap)

	if fp.topic != "simulation-runs" || fp.key != "MSFT" {
		t.Fatalf("unexpected publish %s/%s", fp.topic, fp.key)
	}
	ev, ok := fp.value.(models.RunEvent)
	if !ok {
		t.Fatalf("expected a RunEvent, got %T", fp.value)
	}
	if ev.Method != "capm" || ev.ExpectedReturn == nil || *ev.ExpectedReturn != 0.1 {
		t.Fatalf("unexpected event %+v", ev)
	}

	fp.err = errors.New("broker down")
	p.OnUpdate(snap)
	if err := p.PublishRun(context.Background(), snap); err == nil {
		t.Fatalf("expected producer error to surface from PublishRun")
	}
}
