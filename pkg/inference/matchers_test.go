package inference

import "testing"

func TestMatchToyNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"GRX12", "GRX12", true},
		{"Toy No. HCT93", "HCT93", true},
		{"195234", "195234", true},
		{"Asst. GRX10 HKJ45", "HKJ45", true}, // assortment code stripped first
		{"2023", "", false},                  // bare year is not a toy number
		{"Camaro", "", false},
		{"grx12", "", false}, // card text is uppercase; lowercase is noise
		{"HW", "", false},
	}
	for _, c := range cases {
		got, ok := MatchToyNumber(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("MatchToyNumber(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestMatchSeries(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"HW Exotics Series", "HW Exotics Series", true},
		{"2023 Series", "2023 Series", true},
		{"part of the Muscle Mania series", "part of the Muscle Mania series", true},
		{"2023", "", false},
		{"Series", "", false},
	}
	for _, c := range cases {
		got, ok := MatchSeries(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("MatchSeries(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestMatchYear(t *testing.T) {
	if y, ok := MatchYear("©2023 Mattel"); !ok || y != "2023" {
		t.Fatalf("got %q,%v", y, ok)
	}
	if _, ok := MatchYear("1998"); ok {
		t.Fatalf("1998 should not match a 20xx year")
	}
}

func TestMatchCollection(t *testing.T) {
	if c, ok := MatchCollection("super treasure hunt"); !ok || c != "Super Treasure Hunt" {
		t.Fatalf("got %q,%v", c, ok)
	}
	if c, ok := MatchCollection("Treasure Hunt"); !ok || c != "Treasure Hunt" {
		t.Fatalf("got %q,%v", c, ok)
	}
	if _, ok := MatchCollection("Regular"); ok {
		t.Fatalf("unexpected match")
	}
}
