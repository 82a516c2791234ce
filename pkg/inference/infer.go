package inference

import (
	"sort"
	"strings"
)

// sameLineThreshold is the vertical distance (in provider position units)
// under which two fragments are treated as printed on the same line.
const sameLineThreshold = 10

// Extracted is the structured record inferred from the two card images.
// Title and Description are synthesized; the rest come straight from
// matched fragments. Immutable once built.
type Extracted struct {
	CarModel    string
	Series      string
	ToyNumber   string
	Collection  string
	Year        string
	Title       string
	Description string
}

// orderByReadingPosition sorts fragments top-to-bottom; fragments within
// sameLineThreshold of each other are ordered by descending confidence
// instead. This approximates reading order on a packaging card, where the
// model name is usually the topmost printed line.
func orderByReadingPosition(frags []Fragment) []Fragment {
	out := make([]Fragment, len(frags))
	copy(out, frags)
	sort.SliceStable(out, func(i, j int) bool {
		yi, yj := out[i].Y, out[j].Y
		d := yi - yj
		if d < 0 {
			d = -d
		}
		if d < sameLineThreshold {
			return out[i].Confidence > out[j].Confidence
		}
		return yi < yj
	})
	return out
}

// containsMarkGlyph reports a copyright/trademark glyph in the text. Legal
// boilerplate lines carry these and are never the model name.
func containsMarkGlyph(text string) bool {
	return strings.ContainsAny(text, "©®™")
}

// Infer turns the two fragment sets into an Extracted record. Front
// fragments are re-ordered by reading position; back fragments are swept in
// provider order. Returns ErrNoModelDetected when no usable car model was
// found, which callers must treat as a hard stop for post creation.
func Infer(front, back []Fragment) (Extracted, error) {
	var ext Extracted

	ordered := orderByReadingPosition(front)

	// Primary model guess: first ordered front fragment that is long enough
	// to be a name and is not a toy number.
	for _, f := range ordered {
		if len(f.Text) <= 3 {
			continue
		}
		if _, ok := MatchToyNumber(f.Text); ok {
			continue
		}
		ext.CarModel = f.Text
		break
	}

	// Field sweep over ordered front then raw back. First match wins per
	// field; one fragment may populate several different fields.
	fallback := ""
	sweep := make([]Fragment, 0, len(ordered)+len(back))
	sweep = append(sweep, ordered...)
	sweep = append(sweep, back...)
	for _, f := range sweep {
		for _, m := range fieldMatchers {
			v, ok := m.Match(f.Text)
			if !ok {
				continue
			}
			switch m.Name {
			case "toyNumber":
				if ext.ToyNumber == "" {
					ext.ToyNumber = v
				}
			case "series":
				if ext.Series == "" {
					ext.Series = v
				}
			case "year":
				if ext.Year == "" {
					ext.Year = v
				}
			case "collection":
				if ext.Collection == "" {
					ext.Collection = v
				}
			}
		}
		if ext.CarModel == "" && len(f.Text) > 3 && !matchesAnyField(f.Text) && !containsMarkGlyph(f.Text) {
			if len(f.Text) > len(fallback) {
				fallback = f.Text
			}
		}
	}
	if ext.CarModel == "" {
		ext.CarModel = fallback
	}
	if ext.CarModel == "" {
		return Extracted{}, ErrNoModelDetected
	}

	ext.Title = synthesizeTitle(ext)
	ext.Description = synthesizeDescription(ext)
	return ext, nil
}

func synthesizeTitle(ext Extracted) string {
	title := ext.CarModel
	if ext.Series != "" {
		title += " - " + ext.Series
	}
	if ext.Collection != "" {
		title += " (" + ext.Collection + ")"
	}
	return title
}

func synthesizeDescription(ext Extracted) string {
	var lines []string
	if ext.Year != "" {
		lines = append(lines, "Year: "+ext.Year)
	}
	if ext.Collection != "" {
		lines = append(lines, "Collection: "+ext.Collection)
	}
	if ext.Series != "" {
		lines = append(lines, "Series: "+ext.Series)
	}
	if ext.ToyNumber != "" {
		lines = append(lines, "Toy Number: "+ext.ToyNumber)
	}
	return strings.Join(lines, "\n")
}
