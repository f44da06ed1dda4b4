package embedding

import (
	"fmt"
	"math"
)

// Embedding is the stored vector of one document.
type Embedding struct {
	DocumentID string
	Vector     []float32
}

// Validate rejects embeddings with no owner, no vector or non-finite components.
// A positive dimensions value additionally pins the vector length.
func (e *Embedding) Validate(dimensions int) error {
	if e.DocumentID == "" {
		return fmt.Errorf("embedding has no document id")
	}
	if len(e.Vector) == 0 {
		return fmt.Errorf("embedding for %q is empty", e.DocumentID)
	}
	if dimensions > 0 && len(e.Vector) != dimensions {
		return fmt.Errorf("embedding for %q has %d dimensions, want %d", e.DocumentID, len(e.Vector), dimensions)
	}
	for _, v := range e.Vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("embedding for %q has non-finite component", e.DocumentID)
		}
	}
	return nil
}
