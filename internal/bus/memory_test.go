package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	var received atomic.Int32
	var wg sync.WaitGroup

	err := bus.Subscribe(context.Background(), TopicQueryAnswered, func(ctx context.Context, event Event) error {
		received.Add(1)
		wg.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	wg.Add(3)
	for i := 0; i < 3; i++ {
		err := bus.Publish(context.Background(), TopicQueryAnswered, Event{
			ID:   "evt-" + string(rune('0'+i)),
			Type: "query.answered",
		})
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for events")
	}

	if got := received.Load(); got != 3 {
		t.Errorf("Received %d events, want 3", got)
	}
}

func TestMemoryBus_NoSubscribersIsNotAnError(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	if err := bus.Publish(context.Background(), "unknown.topic", Event{ID: "x"}); err != nil {
		t.Errorf("Publish() with no subscribers error = %v", err)
	}
}

func TestMemoryBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := NewMemoryBus()
	bus.Close()

	if err := bus.Publish(context.Background(), TopicQueryAnswered, Event{ID: "x"}); err == nil {
		t.Error("Publish() on closed bus error = nil")
	}
	if err := bus.Subscribe(context.Background(), TopicQueryAnswered, func(context.Context, Event) error { return nil }); err == nil {
		t.Error("Subscribe() on closed bus error = nil")
	}
}

func TestParseKafkaBrokers(t *testing.T) {
	got := ParseKafkaBrokers(" broker1:9092 , broker2:9092 ")
	if len(got) != 2 || got[0] != "broker1:9092" || got[1] != "broker2:9092" {
		t.Errorf("ParseKafkaBrokers() = %v", got)
	}

	if got := ParseKafkaBrokers(""); got != nil {
		t.Errorf("ParseKafkaBrokers(\"\") = %v, want nil", got)
	}
}
