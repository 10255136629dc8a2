package web

import (
	"testing"
	"time"
)

func TestIPLimiter_PerAddress(t *testing.T) {
	l := newIPLimiter(2, time.Minute)
	defer l.Stop()

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := l.reserve("a"); !ok {
			t.Fatalf("request %d denied", i+1)
		}
	}

	ok, wait := l.reserve("a")
	if ok {
		t.Fatal("third request allowed")
	}
	if wait <= 0 || wait > 30*time.Second {
		t.Errorf("wait = %v, want (0, 30s]", wait)
	}

	if ok, _ := l.reserve("b"); !ok {
		t.Error("other address denied")
	}

	now = now.Add(30 * time.Second)
	if ok, _ := l.reserve("a"); !ok {
		t.Error("request after refill denied")
	}
}

func TestIPLimiter_Sweep(t *testing.T) {
	l := newIPLimiter(5, time.Minute)
	defer l.Stop()

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.reserve("a")
	now = now.Add(time.Minute)
	l.reserve("b")

	now = now.Add(90 * time.Second)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.visitors["a"]; ok {
		t.Error("idle visitor a not swept")
	}
	if _, ok := l.visitors["b"]; !ok {
		t.Error("recent visitor b swept")
	}
	l.Stop()
}
