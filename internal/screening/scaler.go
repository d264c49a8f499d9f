package screening

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Scaler standardises features as (x - mean) / scale
type Scaler struct {
	Features []string  `json:"features,omitempty"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// LoadScaler reads a scaler from a JSON file.
func LoadScaler(path string) (*Scaler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scaler: open: %w", err)
	}
	defer f.Close()

	s, err := DecodeScaler(f)
	if err != nil {
		return nil, fmt.Errorf("scaler: %s: %w", path, err)
	}
	return s, nil
}

// DecodeScaler reads and validates a scaler from JSON.
func DecodeScaler(r io.Reader) (*Scaler, error) {
	var s Scaler
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("mean and scale must be non-empty and of equal length, got %d and %d", len(s.Mean), len(s.Scale))
	}
	if len(s.Features) > 0 && len(s.Features) != len(s.Mean) {
		return nil, fmt.Errorf("%d feature names for %d columns", len(s.Features), len(s.Mean))
	}
	for i, sc := range s.Scale {
		if !(sc > 0) {
			return nil, fmt.Errorf("scale[%d] must be positive, got %g", i, sc)
		}
	}
	return &s, nil
}

// Transform returns the standardised copy of x.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: got %d features, want %d", len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
