package component

import "testing"

func TestBroadcast_LastValueWinsUnderSlowConsumer(t *testing.T) {
	b := NewBroadcast[int]()
	r := b.Subscribe()

	b.Publish(1)
	b.Publish(2)
	b.Publish(3)

	v, ok := r.TryRecv()
	if !ok {
		t.Fatal("expected a value to be available")
	}
	if v != 3 {
		t.Fatalf("expected last-value-wins to surface 3, got %d", v)
	}

	if _, ok := r.TryRecv(); ok {
		t.Fatal("expected no further value after draining the single slot")
	}
}

func TestBroadcast_FansOutToAllSubscribers(t *testing.T) {
	b := NewBroadcast[string]()
	r1 := b.Subscribe()
	r2 := b.Subscribe()

	b.Publish("hello")

	for _, r := range []*Receiver[string]{r1, r2} {
		v, ok := r.TryRecv()
		if !ok || v != "hello" {
			t.Fatalf("subscriber missed published value: got %q, %v", v, ok)
		}
	}
}
