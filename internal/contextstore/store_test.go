package contextstore

import (
	"fmt"
	"sync"
	"testing"
)

func TestAppendKeepsLastTurnsInArrivalOrder(t *testing.T) {
	s := New("Elara", 3)
	for i := 0; i < 5; i++ {
		s.Append(10, 1, "Manudrel", fmt.Sprintf("msg-%d", i))
	}

	got := s.Snapshot(10, 1)
	if len(got) != 3 {
		t.Fatalf("window length = %d, want 3", len(got))
	}
	for i, want := range []string{"msg-2", "msg-3", "msg-4"} {
		wantContent := "$Manudrel says: $" + want
		if got[i].Content != wantContent {
			t.Fatalf("turn[%d].Content = %q, want %q", i, got[i].Content, wantContent)
		}
	}
}

func TestAppendFewerThanCapacity(t *testing.T) {
	s := New("Elara", 20)
	s.Append(10, 0, "Manudrel", "hello")
	s.Append(10, 0, "Elara", "hi there")

	got := s.Snapshot(10, 0)
	if len(got) != 2 {
		t.Fatalf("window length = %d, want 2", len(got))
	}
	if got[0].Role != RoleUser {
		t.Fatalf("turn[0].Role = %q, want %q", got[0].Role, RoleUser)
	}
	if got[1].Role != RoleAssistant {
		t.Fatalf("turn[1].Role = %q, want %q", got[1].Role, RoleAssistant)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New("Elara", 5)
	s.Append(1, 0, "Goat", "first")

	snap := s.Snapshot(1, 0)
	s.Append(1, 0, "Goat", "second")

	if len(snap) != 1 {
		t.Fatalf("snapshot length = %d, want 1", len(snap))
	}
	if snap[0].Content != "$Goat says: $first" {
		t.Fatalf("snapshot content = %q, want unchanged first turn", snap[0].Content)
	}
}

func TestZeroCapacityStaysEmpty(t *testing.T) {
	s := New("Elara", 0)
	for i := 0; i < 10; i++ {
		s.Append(7, 7, "Goat", "noise")
	}
	if n := s.Len(7, 7); n != 0 {
		t.Fatalf("Len = %d, want 0", n)
	}
	if got := s.Snapshot(7, 7); len(got) != 0 {
		t.Fatalf("snapshot length = %d, want 0", len(got))
	}
}

func TestKeyScopesUserAndChat(t *testing.T) {
	s := New("Elara", 5)
	s.Append(10, 1, "Manudrel", "in chat one")
	s.Append(10, 2, "Manudrel", "in chat two")
	s.Append(10, 0, "Manudrel", "no chat scope")

	if n := s.Len(10, 1); n != 1 {
		t.Fatalf("Len(10,1) = %d, want 1", n)
	}
	if n := s.Len(10, 2); n != 1 {
		t.Fatalf("Len(10,2) = %d, want 1", n)
	}
	if n := s.Len(10, 0); n != 1 {
		t.Fatalf("Len(10,0) = %d, want 1", n)
	}

	keys := s.Keys()
	if len(keys) != 3 {
		t.Fatalf("Keys() = %v, want 3 entries", keys)
	}
	if keys[0] != "user_10" {
		t.Fatalf("keys[0] = %q, want %q", keys[0], "user_10")
	}
}

func TestConcurrentAppendAndSnapshot(t *testing.T) {
	s := New("Elara", 8)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Append(int64(worker%3), 1, "Goat", "concurrent")
				_ = s.Snapshot(int64(worker%3), 1)
			}
		}(w)
	}
	wg.Wait()

	for uid := int64(0); uid < 3; uid++ {
		if n := s.Len(uid, 1); n > 8 {
			t.Fatalf("Len(%d,1) = %d, want <= 8", uid, n)
		}
	}
}
