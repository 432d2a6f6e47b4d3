package namespace

import "testing"

func TestKey(t *testing.T) {
	if got := Key("", "alice"); got != "alice" {
		t.Fatalf("empty prefix: %q", got)
	}
	if got := Key("prod:", "alice"); got != "prod:alice" {
		t.Fatalf("prefixed: %q", got)
	}
}

func TestKeyDeterministic(t *testing.T) {
	// The same inputs must always produce the same storage key; delivery
	// depends on the dispatcher and registry agreeing byte for byte.
	a := Key("p-", "bob")
	b := Key("p-", "bob")
	if a != b {
		t.Fatalf("non-deterministic: %q vs %q", a, b)
	}
}

func TestValidKey(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"alice", true},
		{"user:42", true},
		{"", false},
		{"   ", false},
		{"has space", false},
		{"has\nnewline", false},
	}
	for _, c := range cases {
		if got := ValidKey(c.in); got != c.ok {
			t.Fatalf("ValidKey(%q) = %v, want %v", c.in, got, c.ok)
		}
	}
}
