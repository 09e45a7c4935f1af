package engine_test

import (
	"testing"
	"time"

	"github.com/versecue/versecue/internal/engine"
)

func TestRecentCache_Window(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	c := engine.NewRecentCache(5*time.Second, engine.WithClock(func() time.Time { return now }))

	if !c.Observe("John 3:16") {
		t.Fatal("first observation reported as duplicate")
	}
	now = now.Add(3 * time.Second)
	if c.Observe("John 3:16") {
		t.Error("repeat inside window reported as new")
	}
	now = now.Add(3 * time.Second)
	if !c.Observe("John 3:16") {
		t.Error("observation past window reported as duplicate")
	}
}

func TestRecentCache_WindowDoesNotRefresh(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	c := engine.NewRecentCache(5*time.Second, engine.WithClock(func() time.Time { return now }))

	c.Observe("Romans 8:28")

	// A suppressed repeat must not push the window out, otherwise a
	// reference repeated every few seconds would never resurface.
	now = now.Add(2 * time.Second)
	if c.Observe("Romans 8:28") {
		t.Fatal("repeat at +2s reported as new")
	}
	now = now.Add(2 * time.Second)
	if c.Observe("Romans 8:28") {
		t.Fatal("repeat at +4s reported as new")
	}
	now = now.Add(2 * time.Second)
	if !c.Observe("Romans 8:28") {
		t.Error("reference never resurfaced under steady repeats")
	}
}

func TestRecentCache_DistinctKeys(t *testing.T) {
	t.Parallel()

	c := engine.NewRecentCache(5 * time.Second)
	if !c.Observe("John 3:16") || !c.Observe("John 3:17") {
		t.Error("distinct references interfered with each other")
	}
}

func TestRecentCache_Clear(t *testing.T) {
	t.Parallel()

	c := engine.NewRecentCache(time.Hour)
	c.Observe("Genesis 1:1")
	c.Clear()
	if !c.Observe("Genesis 1:1") {
		t.Error("observation after Clear reported as duplicate")
	}
}

func TestRecentCache_ZeroWindowDefaults(t *testing.T) {
	t.Parallel()

	c := engine.NewRecentCache(0)
	if !c.Observe("John 3:16") {
		t.Fatal("first observation reported as duplicate")
	}
	if c.Observe("John 3:16") {
		t.Error("immediate repeat reported as new under default window")
	}
}
