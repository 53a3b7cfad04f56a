// Package metric holds metric values as handed to the sky plotters.
//
// Values is the Go counterpart of a masked array: Data carries one value per
// partition cell and Mask marks the cells that have no valid value. Per-visit
// metrics carry their visits instead.
package metric

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/opsim"
)

// Values are metric values over a sky partition or a set of visits.
type Values struct {
	Data   []float64
	Mask   []bool // true = masked; nil means nothing is masked
	Visits []opsim.Visit
}

// Len returns the number of cells.
func (v Values) Len() int { return len(v.Data) }

// Masked reports whether cell i has no valid value. NaN and infinite values
// count as masked.
func (v Values) Masked(i int) bool {
	if i < len(v.Mask) && v.Mask[i] {
		return true
	}
	return math.IsNaN(v.Data[i]) || math.IsInf(v.Data[i], 0)
}

// Unmasked returns the valid values in cell order.
func (v Values) Unmasked() []float64 {
	out := make([]float64, 0, len(v.Data))
	for i, x := range v.Data {
		if !v.Masked(i) {
			out = append(out, x)
		}
	}
	return out
}

// fileFormat is the on-disk JSON form. A null value is masked.
type fileFormat struct {
	Values []*float64 `json:"values"`
	Mask   []bool     `json:"mask,omitempty"`
}

// Decode reads values from JSON of the form {"values": [...], "mask": [...]}.
func Decode(r io.Reader) (Values, error) {
	var f fileFormat
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return Values{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode metric values")
	}
	if f.Mask != nil && len(f.Mask) != len(f.Values) {
		return Values{}, errors.New(errors.ErrCodeInvalidInput,
			"mask has %d entries, values has %d", len(f.Mask), len(f.Values))
	}

	v := Values{Data: make([]float64, len(f.Values)), Mask: make([]bool, len(f.Values))}
	for i, p := range f.Values {
		switch {
		case p == nil:
			v.Data[i] = math.NaN()
			v.Mask[i] = true
		default:
			v.Data[i] = *p
			v.Mask[i] = f.Mask != nil && f.Mask[i]
		}
	}
	return v, nil
}

// Encode writes v in the form read by [Decode]. Masked cells become null.
func Encode(w io.Writer, v Values) error {
	f := fileFormat{Values: make([]*float64, len(v.Data))}
	for i := range v.Data {
		if !v.Masked(i) {
			x := v.Data[i]
			f.Values[i] = &x
		}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode metric values: %w", err)
	}
	return nil
}

// ReadFile loads values from a JSON file and returns them with the raw file
// bytes, which callers use as a cache key.
func ReadFile(path string) (Values, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "metric values %s", path)
		}
		return Values{}, nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Values{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, data, nil
}
