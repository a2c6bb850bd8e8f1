package mqtt

import (
	"testing"
)

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	if got2 := rb.drainAll(); got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingBufferOverflowKeepsNewest(t *testing.T) {
	rb := newRingBuffer(3)
	var firstDrops int
	for i := 0; i < 7; i++ {
		if rb.push(bufferedMsg{payload: []byte{byte(i)}}) {
			firstDrops++
		}
	}

	if firstDrops != 1 {
		t.Errorf("first-drop reported %d times, want 1", firstDrops)
	}
	if rb.len() != 3 {
		t.Fatalf("len = %d, want 3", rb.len())
	}
	got := rb.drainAll()
	for i, want := range []byte{4, 5, 6} {
		if got[i].payload[0] != want {
			t.Errorf("item %d = %d, want %d", i, got[i].payload[0], want)
		}
	}

	// Drop reporting resets after a drain.
	for i := 0; i < 4; i++ {
		if rb.push(bufferedMsg{}) && i != 3 {
			t.Errorf("push %d reported first drop", i)
		}
	}
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	rb := newRingBuffer(0)
	rb.push(bufferedMsg{topic: "a"})
	rb.push(bufferedMsg{topic: "b"})

	got := rb.drainAll()
	if len(got) != 1 || got[0].topic != "b" {
		t.Errorf("got %+v, want only b", got)
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	got := rb.drainAll()[0]
	if got.topic != TopicSystem || string(got.payload) != "x" || got.qos != 1 || !got.retained {
		t.Errorf("fields not preserved: %+v", got)
	}
}
