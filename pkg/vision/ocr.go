package vision

import (
	"bytes"
	"context"
	"log"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/rcm-webdev/the-shop/pkg/inference"
)

// StatusFailed marks an envelope whose OCR run did not complete. The
// fragment extractor treats it as empty input.
const StatusFailed = "failed"

// Recognize runs OCR over one card image and returns the annotated envelope
// consumed by the inference engine. Failures and context timeouts never
// propagate as errors: a bad OCR result degrades to a non-complete envelope
// so the enclosing request can continue with empty fragments.
func Recognize(ctx context.Context, data []byte) inference.Envelope {
	type result struct {
		env inference.Envelope
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{env: recognize(data)}
	}()
	select {
	case <-ctx.Done():
		log.Printf("vision: ocr canceled: %v", ctx.Err())
		return inference.Envelope{Status: StatusFailed}
	case r := <-ch:
		return r.env
	}
}

func recognize(data []byte) inference.Envelope {
	prepped, err := preprocessCard(data)
	if err != nil {
		log.Printf("vision: preprocess failed: %v", err)
		return inference.Envelope{Status: StatusFailed}
	}

	var sets []inference.AnnotationSet

	// Line-level pass over the preprocessed image. Card titles print as one
	// line, so lines are the natural fragment unit.
	lines, err := annotate(prepped, gosseract.PSM_AUTO)
	if err != nil {
		log.Printf("vision: line pass failed: %v", err)
		return inference.Envelope{Status: StatusFailed}
	}
	if len(lines) > 0 {
		sets = append(sets, inference.AnnotationSet{TextAnnotations: lines})
	}

	// Sparse pass over the untouched image catches stylized text the
	// thresholding wipes out (foil titles, logos).
	if sparse, err := annotate(data, gosseract.PSM_SPARSE_TEXT); err == nil && len(sparse) > 0 {
		sets = append(sets, inference.AnnotationSet{TextAnnotations: sparse})
	}

	return inference.Envelope{Status: inference.StatusComplete, Info: sets}
}

// annotate runs one tesseract pass and converts its line boxes into
// positionally annotated text spans.
func annotate(img []byte, psm gosseract.PageSegMode) ([]inference.Annotation, error) {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetPageSegMode(psm)
	if err := client.SetImageFromBytes(img); err != nil {
		return nil, err
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, err
	}
	anns := make([]inference.Annotation, 0, len(boxes))
	for _, b := range boxes {
		anns = append(anns, inference.Annotation{
			Description: b.Word,
			Confidence:  b.Confidence,
			BoundingBox: &inference.Box{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
		})
	}
	return anns, nil
}

// preprocessCard normalizes a card photo for OCR: grayscale, mild contrast
// and sharpen, upscale small shots so line boxes come out stable.
func preprocessCard(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	sharpened := imaging.Sharpen(gray, 0.7)
	if sharpened.Bounds().Dy() < 900 {
		sharpened = imaging.Resize(sharpened, 0, 1300, imaging.Lanczos)
	}
	out := binarize(sharpened, 200)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
