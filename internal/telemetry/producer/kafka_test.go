package producer

import (
	"context"
	"testing"

	"gemini-observatory/backend/internal/telemetry"
)

func TestNewKafkaProducer_DisabledWithoutBrokers(t *testing.T) {
	p := NewKafkaProducer(nil, "topic")
	if p != nil {
		t.Fatal("producer should be nil without brokers")
	}
	if err := p.Emit(context.Background(), &telemetry.Event{EventType: "test"}); err != nil {
		t.Errorf("nil producer Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil producer Close: %v", err)
	}
	if NewKafkaProducer([]string{"localhost:9092"}, "") != nil {
		t.Error("producer should be nil without topic")
	}
}

func TestKafkaProducer_NilEvent(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, "gemini-telemetry")
	defer p.Close()
	if err := p.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil): %v", err)
	}
}

func TestNewConsumer_Validation(t *testing.T) {
	if _, err := NewConsumer(nil, "t", "g"); err == nil {
		t.Error("NewConsumer without brokers should fail")
	}
	if _, err := NewConsumer([]string{"localhost:9092"}, "", "g"); err == nil {
		t.Error("NewConsumer without topic should fail")
	}
	c, err := NewConsumer([]string{"localhost:9092"}, "t", "g")
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

var _ Producer = (*KafkaProducer)(nil)
