package metrics

import (
	"testing"

	"github.com/kilianp07/evrange/core/factory"
)

func TestNewSinkFromRegistry(t *testing.T) {
	if err := RegisterSink("test-counting", func(map[string]any) (RangeSink, error) {
		return &estimateOnly{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err := NewSink([]factory.ModuleConfig{{Type: "test-counting"}})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, ok := s.(*estimateOnly); !ok {
		t.Fatalf("expected single sink, got %T", s)
	}

	s, err = NewSink([]factory.ModuleConfig{{Type: "test-counting"}, {Type: "test-counting"}})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	multi, ok := s.(*MultiSink)
	if !ok || len(multi.Sinks) != 2 {
		t.Fatalf("expected multi sink with 2 sinks, got %T", s)
	}

	if _, err := NewSink([]factory.ModuleConfig{{Type: "test-counting"}, {Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown sink type")
	}
	found := false
	for _, n := range RegisteredSinks() {
		if n == "test-counting" {
			found = true
		}
	}
	if !found {
		t.Fatal("registered sink not listed")
	}
}
