package inference

import "testing"

func frag(text string, y int, conf float64) Fragment {
	return Fragment{Text: text, HasBox: true, Y: y, Confidence: conf}
}

func TestInferNoModelDetected(t *testing.T) {
	front := []Fragment{frag("HW", 10, 0.9), frag("abc", 30, 0.8)}
	back := []Fragment{frag("xyz", 5, 0.7)}
	_, err := Infer(front, back)
	if err != ErrNoModelDetected {
		t.Fatalf("expected ErrNoModelDetected got %v", err)
	}
}

func TestInferModelAndYear(t *testing.T) {
	front := []Fragment{
		frag("Custom '69 Camaro", 10, 0.9),
		frag("2023", 40, 0.8),
	}
	ext, err := Infer(front, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.CarModel != "Custom '69 Camaro" {
		t.Fatalf("carModel = %q", ext.CarModel)
	}
	if ext.Year != "2023" {
		t.Fatalf("year = %q", ext.Year)
	}
	if ext.Title != "Custom '69 Camaro" {
		t.Fatalf("title = %q", ext.Title)
	}
	if ext.Description != "Year: 2023" {
		t.Fatalf("description = %q", ext.Description)
	}
}

func TestInferCollectionFirstMatchWins(t *testing.T) {
	front := []Fragment{
		frag("Bone Shaker", 10, 0.9),
		frag("Super Treasure Hunt", 60, 0.8),
	}
	back := []Fragment{frag("Super Treasure Hunt", 5, 0.7)}
	ext, err := Infer(front, back)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Collection != "Super Treasure Hunt" {
		t.Fatalf("collection = %q", ext.Collection)
	}
	if ext.Title != "Bone Shaker (Super Treasure Hunt)" {
		t.Fatalf("title = %q", ext.Title)
	}
}

func TestSameLineOrderedByConfidence(t *testing.T) {
	a := frag("Twin Mill", 10, 0.5)
	b := frag("Deora II", 12, 0.9)
	for _, front := range [][]Fragment{{a, b}, {b, a}} {
		ext, err := Infer(front, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ext.CarModel != "Deora II" {
			t.Fatalf("expected higher-confidence fragment first, got model %q", ext.CarModel)
		}
	}
}

func TestInferTitleWithSeriesAndCollection(t *testing.T) {
	front := []Fragment{
		frag("Rodger Dodger", 8, 0.95),
		frag("HW Hot Rods Series", 42, 0.9),
		frag("Premium", 80, 0.85),
	}
	back := []Fragment{frag("Toy No. GRX12", 10, 0.9), frag("2024", 30, 0.8)}
	ext, err := Infer(front, back)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Title != "Rodger Dodger - HW Hot Rods Series (Premium)" {
		t.Fatalf("title = %q", ext.Title)
	}
	if ext.ToyNumber != "GRX12" {
		t.Fatalf("toyNumber = %q", ext.ToyNumber)
	}
	want := "Year: 2024\nCollection: Premium\nSeries: HW Hot Rods Series\nToy Number: GRX12"
	if ext.Description != want {
		t.Fatalf("description = %q want %q", ext.Description, want)
	}
}

func TestInferModelFallbackLongestUnmatched(t *testing.T) {
	// Topmost fragments are too short or pattern-like, so the model comes
	// from the longest unclassified text seen during the sweep.
	front := []Fragment{
		frag("HW", 5, 0.9),
		frag("GRX12", 20, 0.9),
	}
	back := []Fragment{
		frag("©2024 Mattel Inc. All Rights Reserved", 10, 0.9),
		frag("Nissan Skyline GT-R", 30, 0.8),
	}
	ext, err := Infer(front, back)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.CarModel != "Nissan Skyline GT-R" {
		t.Fatalf("carModel = %q", ext.CarModel)
	}
}
