/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package method

import (
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/holbizmetrics/HutterPrize/entropy"
)

const _PPM_DEFAULT_ORDER = 4

// PPM is prediction by partial matching over the range coder. Container:
// little-endian int64 original size, one order byte, then the range coded
// payload (5 flush bytes included).
type PPM struct {
	order int
}

// NewPPM creates a new instance of PPM with the given maximum context
// order.
func NewPPM(order int) (*PPM, error) {
	if order < 0 || order > 16 {
		return nil, errors.Errorf("ppm: invalid order %d (must be in [0..16])", order)
	}

	return &PPM{order: order}, nil
}

// Name returns the registry name of the method
func (this *PPM) Name() string {
	return "ppm"
}

// Compress encodes the data with a fresh PPM model
func (this *PPM) Compress(data []byte) (*Result, error) {
	start := time.Now()
	model, err := entropy.NewPPMModel(this.order)

	if err != nil {
		return nil, errors.Wrap(err, "ppm: compress")
	}

	enc, err := entropy.NewRangeEncoder()

	if err != nil {
		return nil, errors.Wrap(err, "ppm: compress")
	}

	for _, b := range data {
		model.Encode(enc, b)
	}

	enc.Dispose()
	out := append(sizeHeader(len(data)), byte(this.order))
	out = append(out, enc.Bytes()...)
	res := newResult(this.Name(), len(data), out, start)
	res.Metadata = map[string]string{"order": strconv.Itoa(this.order)}
	return res, nil
}

// Decompress reverses Compress, reading the model order from the container
func (this *PPM) Decompress(data []byte) ([]byte, error) {
	size, payload, err := readSizeHeader(data)

	if err != nil {
		return nil, errors.Wrap(err, "ppm: decompress")
	}

	if len(payload) < 1 {
		return nil, errors.New("ppm: decompress: truncated container (missing order)")
	}

	model, err := entropy.NewPPMModel(int(payload[0]))

	if err != nil {
		return nil, errors.Wrap(err, "ppm: decompress")
	}

	dec, err := entropy.NewRangeDecoder(payload[1:])

	if err != nil {
		return nil, errors.Wrap(err, "ppm: decompress")
	}

	out := make([]byte, size)

	for i := range out {
		sym, err := model.Decode(dec)

		if err != nil {
			return nil, errors.Wrap(err, "ppm: decompress")
		}

		out[i] = sym
	}

	return out, nil
}
