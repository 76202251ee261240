package stream

import (
	"context"
	"testing"
	"time"
)

func TestPublishReachesSubscribers(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := s.Subscribe(ctx)
	b := s.Subscribe(ctx)
	if got := s.Subscribers(); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}

	s.Publish(Event{Type: "attendance.recorded", Payload: "E1"})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case evt := <-ch:
			if evt.Type != "attendance.recorded" || evt.Payload != "E1" {
				t.Fatalf("unexpected event %+v", evt)
			}
			if evt.Timestamp.IsZero() {
				t.Fatal("expected timestamp to be set")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestSubscriberClosedOnCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	if got := s.Subscribers(); got != 0 {
		t.Fatalf("expected no subscribers, got %d", got)
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = s.Subscribe(ctx)

	for i := 0; i < 20; i++ {
		s.Publish(Event{Type: "tick"})
	}
	if got := s.Dropped(); got != 4 {
		t.Fatalf("expected 4 dropped deliveries, got %d", got)
	}
}
