package usecase

import (
	"fmt"
	"math"
)

// BlendVectors mixes an image embedding into a text embedding with
// weightImage in [0,1], then L2-normalizes the result. weightImage 0 (or a
// nil image vector) returns the text vector untouched, so text-only search
// results are bit-identical with and without the blending path.
func BlendVectors(textVector, imageVector []float32, weightImage float64) ([]float32, error) {
	if len(textVector) == 0 {
		return nil, fmt.Errorf("empty text vector")
	}
	if weightImage < 0 || weightImage > 1 {
		return nil, fmt.Errorf("weight_image %v outside [0,1]", weightImage)
	}
	if weightImage == 0 || len(imageVector) == 0 {
		return textVector, nil
	}
	if len(imageVector) != len(textVector) {
		return nil, fmt.Errorf("vector dimension mismatch: text %d, image %d", len(textVector), len(imageVector))
	}

	weightText := 1.0 - weightImage
	combined := make([]float32, len(textVector))
	var norm float64
	for i := range textVector {
		v := weightImage*float64(imageVector[i]) + weightText*float64(textVector[i])
		combined[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("blended vector has zero norm")
	}
	for i := range combined {
		combined[i] = float32(float64(combined[i]) / norm)
	}
	return combined, nil
}
