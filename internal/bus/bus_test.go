package bus

import (
	"testing"
	"time"
)

func TestEmitReachesSubscribers(t *testing.T) {
	b := New()

	var got []string
	b.Subscribe("a", func(event string, payload any) {
		got = append(got, event)
	})

	b.Emit("one", nil)
	b.Emit("two", 42)

	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("received %v, want [one two]", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	n := 0
	b.Subscribe("a", func(string, any) { n++ })
	b.Emit("x", nil)
	b.Unsubscribe("a")
	b.Emit("x", nil)

	if n != 1 {
		t.Errorf("handler ran %d times, want 1", n)
	}
}

func TestEmitSurvivesPanickingSubscriber(t *testing.T) {
	b := New()

	delivered := false
	b.Subscribe("bad", func(string, any) { panic("boom") })
	b.Subscribe("good", func(string, any) { delivered = true })

	b.Emit("x", nil)

	if !delivered {
		t.Error("a panicking subscriber must not block delivery to others")
	}
}

func TestDedupeCache(t *testing.T) {
	d := NewDedupeCache(50*time.Millisecond, 10)

	if d.IsDuplicate("k") {
		t.Fatal("first sighting must not be a duplicate")
	}
	if !d.IsDuplicate("k") {
		t.Fatal("second sighting within TTL must be a duplicate")
	}

	time.Sleep(60 * time.Millisecond)
	if d.IsDuplicate("k") {
		t.Error("sighting after TTL expiry must not be a duplicate")
	}
}

func TestDedupeCacheSizeCap(t *testing.T) {
	d := NewDedupeCache(time.Minute, 3)

	for _, k := range []string{"a", "b", "c", "d"} {
		d.IsDuplicate(k)
	}
	if n := d.Len(); n > 3 {
		t.Errorf("cache holds %d entries, cap is 3", n)
	}
}
