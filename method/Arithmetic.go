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
	"time"

	"github.com/pkg/errors"

	"github.com/holbizmetrics/HutterPrize/entropy"
)

// Arithmetic is plain adaptive arithmetic coding: an order-0 frequency
// model driving the range coder. Container: little-endian int64 original
// size, then the range coded payload (5 flush bytes included).
type Arithmetic struct {
}

// NewArithmetic creates a new instance of Arithmetic
func NewArithmetic() (*Arithmetic, error) {
	return &Arithmetic{}, nil
}

// Name returns the registry name of the method
func (this *Arithmetic) Name() string {
	return "arithmetic"
}

// Compress encodes the data with an adaptive order-0 model
func (this *Arithmetic) Compress(data []byte) (*Result, error) {
	start := time.Now()
	enc, err := entropy.NewRangeEncoder()

	if err != nil {
		return nil, errors.Wrap(err, "arithmetic: compress")
	}

	model, err := entropy.NewOrder0Model()

	if err != nil {
		return nil, errors.Wrap(err, "arithmetic: compress")
	}

	for _, b := range data {
		cum, freq, total := model.GetEncodeInfo(b)
		enc.Encode(cum, freq, total)
		model.Update(b)
	}

	enc.Dispose()
	out := append(sizeHeader(len(data)), enc.Bytes()...)
	return newResult(this.Name(), len(data), out, start), nil
}

// Decompress reverses Compress
func (this *Arithmetic) Decompress(data []byte) ([]byte, error) {
	size, payload, err := readSizeHeader(data)

	if err != nil {
		return nil, errors.Wrap(err, "arithmetic: decompress")
	}

	dec, err := entropy.NewRangeDecoder(payload)

	if err != nil {
		return nil, errors.Wrap(err, "arithmetic: decompress")
	}

	model, err := entropy.NewOrder0Model()

	if err != nil {
		return nil, errors.Wrap(err, "arithmetic: decompress")
	}

	out := make([]byte, size)

	for i := range out {
		v := dec.GetFreq(model.Total())
		sym, cum, freq := model.GetSymbol(v)
		dec.Update(cum, freq)
		model.Update(sym)
		out[i] = sym
	}

	return out, nil
}
