package pagination

import "testing"

func TestSkipTakePages(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	if p.Skip() != 10 {
		t.Fatalf("expected skip 10, got %d", p.Skip())
	}
	if p.Take() != 10 {
		t.Fatalf("expected take 10, got %d", p.Take())
	}
	meta := MetaFor(p, 150)
	if meta.Pages != 15 {
		t.Fatalf("expected 15 pages, got %d", meta.Pages)
	}
	if Pages(151, 10) != 16 {
		t.Fatalf("expected partial page to round up")
	}
	if Pages(0, 10) != 0 {
		t.Fatalf("expected zero pages for empty result")
	}
}

func TestParseFallsBackToDefaults(t *testing.T) {
	cases := []struct {
		page, limit string
		want        Params
	}{
		{"", "", Params{Page: 1, Limit: 20}},
		{"abc", "xyz", Params{Page: 1, Limit: 20}},
		{"-3", "0", Params{Page: 1, Limit: 20}},
		{"3", "500", Params{Page: 3, Limit: MaxLimit}},
		{" 2 ", "15", Params{Page: 2, Limit: 15}},
	}
	for _, tc := range cases {
		if got := Parse(tc.page, tc.limit); got != tc.want {
			t.Fatalf("Parse(%q,%q): expected %+v got %+v", tc.page, tc.limit, tc.want, got)
		}
	}
}
