package inference

import "strings"

// Overrides carries the user-supplied form values that take precedence over
// inferred ones.
type Overrides struct {
	Title   string
	Caption string
	Tags    []string
}

// PostFields is the merged result seeding the persisted post.
type PostFields struct {
	Extracted
	Title   string
	Caption string
	Tags    []string
}

// SplitTags splits a comma-separated tag string, trimming whitespace and
// dropping empties.
func SplitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// InferFields is the single inbound boundary of the engine: pure with
// respect to its inputs, no I/O. It runs inference over the two fragment
// sets and merges the result with the user's overrides.
func InferFields(front, back []Fragment, ov Overrides) (PostFields, error) {
	ext, err := Infer(front, back)
	if err != nil {
		return PostFields{}, err
	}
	return merge(ext, ov), nil
}

func merge(ext Extracted, ov Overrides) PostFields {
	pf := PostFields{Extracted: ext}

	pf.Title = ov.Title
	if pf.Title == "" {
		pf.Title = ext.Title
	}
	if pf.Title == "" {
		pf.Title = ext.CarModel
	}

	pf.Caption = ov.Caption
	if pf.Caption == "" {
		pf.Caption = ext.Description
	}

	// Order-preserving deduplicated union: user tags first, then the
	// non-empty inferred values.
	seen := map[string]struct{}{}
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		pf.Tags = append(pf.Tags, t)
	}
	for _, t := range ov.Tags {
		add(t)
	}
	for _, t := range []string{ext.CarModel, ext.Series, ext.ToyNumber, ext.Collection, ext.Year} {
		add(t)
	}
	return pf
}
