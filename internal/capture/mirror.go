package capture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CorrectMirror un-flips a preview frame. The live preview is shown
// mirrored, as is conventional for front-facing cameras; the stored still
// must match physical reality, so the capture step applies a compensating
// horizontal flip.
func CorrectMirror(frame image.Image) image.Image {
	return imaging.FlipH(frame)
}

// EncodeJPEG renders the corrected still as a JPEG blob.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode still: %w", err)
	}
	return buf.Bytes(), nil
}
