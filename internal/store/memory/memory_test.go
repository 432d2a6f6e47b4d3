package memory

import (
	"context"
	"testing"

	"github.com/kittors/simple-message-service/internal/message"
)

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	m1, err := s.Append(ctx, "alice", "one")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	m2, err := s.Append(ctx, "alice", "two")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if m2.ID <= m1.ID {
		t.Fatalf("ids not increasing: %d then %d", m1.ID, m2.ID)
	}
	if m1.CreatedAt.IsZero() {
		t.Fatalf("createdAt not assigned")
	}
}

func TestHistoryNewestFirstPaged(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, c := range []string{"m1", "m2", "m3", "m4", "m5"} {
		if _, err := s.Append(ctx, "alice", c); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	page1, err := s.History(ctx, "alice", 1, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	page2, err := s.History(ctx, "alice", 2, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	page3, err := s.History(ctx, "alice", 3, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	page4, err := s.History(ctx, "alice", 4, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	var got []string
	for _, p := range [][]string{contents(page1), contents(page2), contents(page3)} {
		got = append(got, p...)
	}
	want := []string{"m5", "m4", "m3", "m2", "m1"}
	if len(got) != len(want) {
		t.Fatalf("pages concatenated: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order at %d: got %q want %q", i, got[i], want[i])
		}
	}
	if len(page4) != 0 {
		t.Fatalf("past-the-end page should be empty, got %v", page4)
	}
}

func TestSoftDeleteIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	m, _ := s.Append(ctx, "bob", "hello")

	n, err := s.SoftDelete(ctx, "bob", []uint64{m.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("first delete count: %d", n)
	}

	n, err = s.SoftDelete(ctx, "bob", []uint64{m.ID})
	if err != nil {
		t.Fatalf("re-delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("re-delete must count zero, got %d", n)
	}

	rows, _ := s.History(ctx, "bob", 1, 10)
	if len(rows) != 0 {
		t.Fatalf("deleted message still visible: %v", rows)
	}
}

func TestSoftDeleteOwnershipIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	mb, _ := s.Append(ctx, "keyB", "belongs to B")

	n, err := s.SoftDelete(ctx, "keyA", []uint64{mb.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("cross-key delete must count zero, got %d", n)
	}

	rows, _ := s.History(ctx, "keyB", 1, 10)
	if len(rows) != 1 {
		t.Fatalf("B's message must survive, got %v", rows)
	}
	rowsA, _ := s.History(ctx, "keyA", 1, 10)
	if len(rowsA) != 0 {
		t.Fatalf("A must not see B's messages: %v", rowsA)
	}
}

func TestSoftDeletePartialMatch(t *testing.T) {
	s := New()
	ctx := context.Background()
	m1, _ := s.Append(ctx, "bob", "one")
	m2, _ := s.Append(ctx, "bob", "two")
	m3, _ := s.Append(ctx, "bob", "three")

	// One real id, one unknown id: partial match is success.
	n, err := s.SoftDelete(ctx, "bob", []uint64{m2.ID, 9999})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("partial match count: %d", n)
	}

	rows, _ := s.History(ctx, "bob", 1, 10)
	if len(rows) != 2 {
		t.Fatalf("want 2 survivors, got %d", len(rows))
	}
	for _, m := range rows {
		if m.ID == m2.ID {
			t.Fatalf("deleted id %d still visible", m2.ID)
		}
		if m.ID != m1.ID && m.ID != m3.ID {
			t.Fatalf("unexpected id %d", m.ID)
		}
	}
}

func contents(ms []message.Message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Content)
	}
	return out
}
