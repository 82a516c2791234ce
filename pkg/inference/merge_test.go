package inference

import (
	"reflect"
	"testing"
)

func TestMergeTagUnionDedup(t *testing.T) {
	front := []Fragment{
		frag("Bone Shaker", 10, 0.9),
		frag("Mainline", 40, 0.8),
	}
	pf, err := InferFields(front, nil, Overrides{Tags: []string{"red", "rare", "Mainline"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"red", "rare", "Mainline", "Bone Shaker"}
	if !reflect.DeepEqual(pf.Tags, want) {
		t.Fatalf("tags = %v want %v", pf.Tags, want)
	}
}

func TestMergeUserValuesWin(t *testing.T) {
	front := []Fragment{
		frag("Twin Mill", 10, 0.9),
		frag("2023", 40, 0.8),
	}
	pf, err := InferFields(front, nil, Overrides{Title: "My Twin Mill", Caption: "shelf find"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf.Title != "My Twin Mill" {
		t.Fatalf("title = %q", pf.Title)
	}
	if pf.Caption != "shelf find" {
		t.Fatalf("caption = %q", pf.Caption)
	}
}

func TestMergeSynthesizedDefaults(t *testing.T) {
	front := []Fragment{
		frag("Twin Mill", 10, 0.9),
		frag("2023", 40, 0.8),
	}
	pf, err := InferFields(front, nil, Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pf.Title != "Twin Mill" {
		t.Fatalf("title = %q", pf.Title)
	}
	if pf.Caption != "Year: 2023" {
		t.Fatalf("caption = %q", pf.Caption)
	}
	if !reflect.DeepEqual(pf.Tags, []string{"Twin Mill", "2023"}) {
		t.Fatalf("tags = %v", pf.Tags)
	}
}

func TestMergeNoModelPropagates(t *testing.T) {
	_, err := InferFields(nil, nil, Overrides{Title: "manual"})
	if err != ErrNoModelDetected {
		t.Fatalf("expected ErrNoModelDetected got %v", err)
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" red , rare ,, blue ")
	if !reflect.DeepEqual(got, []string{"red", "rare", "blue"}) {
		t.Fatalf("got %v", got)
	}
}
