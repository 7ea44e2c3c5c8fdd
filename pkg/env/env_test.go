package env

import "testing"

func TestGetFallsBack(t *testing.T) {
	t.Setenv("JUSTSELL_TEST_VALUE", "")
	if got := Get("JUSTSELL_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("JUSTSELL_TEST_VALUE", "set")
	if got := Get("JUSTSELL_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("JUSTSELL_TEST_FLAG", "true")
	if !GetBool("JUSTSELL_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("JUSTSELL_TEST_FLAG", "nope")
	if GetBool("JUSTSELL_TEST_FLAG", false) {
		t.Fatal("malformed value should use fallback")
	}
}
