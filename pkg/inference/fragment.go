package inference

import (
	"iter"
	"strings"
)

// StatusComplete is the envelope status the media host reports for a
// successful OCR run. Anything else is treated as "no text recognized".
const StatusComplete = "complete"

// Box is the pixel-space bounding box of a recognized span. Only the
// vertical position is consulted downstream, for reading-order sorting.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Annotation is one recognized span inside an annotation set.
type Annotation struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	BoundingBox *Box    `json:"boundingBox,omitempty"`
}

// AnnotationSet groups the annotations of one detection block.
type AnnotationSet struct {
	TextAnnotations []Annotation `json:"textAnnotations"`
}

// Envelope is the OCR response for a single image as returned by the media
// host adapter. The structure is provider-shaped; any provider producing
// this envelope is substitutable.
type Envelope struct {
	Status string          `json:"status"`
	Info   []AnnotationSet `json:"info"`
}

// Fragment is one OCR-recognized text span. Fragments are built fresh per
// response and never persisted.
type Fragment struct {
	Text       string
	HasBox     bool
	X, Y, W, H int
	Confidence float64
}

// Fragments yields the envelope's annotations as trimmed fragments in the
// provider's original block/annotation order. A non-complete status or a
// missing structure yields nothing: one bad OCR response must not abort the
// whole request, so the extractor degrades to empty rather than failing.
func Fragments(env Envelope) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		if env.Status != StatusComplete {
			return
		}
		for _, set := range env.Info {
			for _, ann := range set.TextAnnotations {
				text := strings.TrimSpace(ann.Description)
				if text == "" {
					continue
				}
				f := Fragment{Text: text, Confidence: ann.Confidence}
				if ann.BoundingBox != nil {
					f.HasBox = true
					f.X = ann.BoundingBox.X
					f.Y = ann.BoundingBox.Y
					f.W = ann.BoundingBox.Width
					f.H = ann.BoundingBox.Height
				}
				if !yield(f) {
					return
				}
			}
		}
	}
}

// CollectFragments drains Fragments into a slice for the orchestrator.
func CollectFragments(env Envelope) []Fragment {
	var out []Fragment
	for f := range Fragments(env) {
		out = append(out, f)
	}
	return out
}
