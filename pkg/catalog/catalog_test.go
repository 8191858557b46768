package catalog

import "testing"

// TestDefaultOrdering verifies the built-in catalog is ascending by version.
func TestDefaultOrdering(t *testing.T) {
	c := Default()
	entries := c.Entries()
	if len(entries) == 0 {
		t.Fatal("default catalog is empty")
	}
	for i := 1; i < len(entries); i++ {
		if Compare(entries[i-1].Full, entries[i].Full) >= 0 {
			t.Errorf("entries out of order: %s before %s", entries[i-1].Full, entries[i].Full)
		}
	}
}

// TestNewSortsEntries verifies construction order does not matter.
func TestNewSortsEntries(t *testing.T) {
	c, err := New([]VersionEntry{
		{Label: "3.12", Full: "3.12.1"},
		{Label: "3.9", Full: "3.9.18"},
		{Label: "3.10", Full: "3.10.13"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	want := []string{"3.9", "3.10", "3.12"}
	got := c.Entries()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, label := range want {
		if got[i].Label != label {
			t.Errorf("position %d: expected %s, got %s", i, label, got[i].Label)
		}
	}
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name    string
		entries []VersionEntry
	}{
		{"empty", nil},
		{"duplicate label", []VersionEntry{
			{Label: "3.9", Full: "3.9.18"},
			{Label: "3.9", Full: "3.9.17"},
		}},
		{"label mismatch", []VersionEntry{
			{Label: "3.9", Full: "3.10.13"},
		}},
		{"empty label", []VersionEntry{
			{Label: "", Full: "3.9.18"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.entries); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	e, ok := c.Lookup("3.12")
	if !ok {
		t.Fatal("expected 3.12 in default catalog")
	}
	if e.Full != "3.12.1" {
		t.Errorf("expected full version 3.12.1, got %s", e.Full)
	}
	if e.Executable() != "python3.12" {
		t.Errorf("expected executable python3.12, got %s", e.Executable())
	}

	if _, ok := c.Lookup("2.7"); ok {
		t.Error("did not expect 2.7 in default catalog")
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"3.9.18", "3.10.13", -1},
		{"3.10.13", "3.9.18", 1},
		{"3.12.1", "3.12.1", 0},
		{"3.9", "3.9.1", -1},
		{"3.11.7", "3.11.10", -1},
	}
	for _, tc := range cases {
		got := Compare(tc.a, tc.b)
		if got != tc.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
