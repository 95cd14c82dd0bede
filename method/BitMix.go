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

// BitMix is bit level context mixing: every byte is coded MSB first by
// the binary arithmetic coder driven by the logistic mixing predictor.
// Container: little-endian int64 original size, then the binary
// arithmetic payload (4 flush bytes included).
type BitMix struct {
}

// NewBitMix creates a new instance of BitMix
func NewBitMix() (*BitMix, error) {
	return &BitMix{}, nil
}

// Name returns the registry name of the method
func (this *BitMix) Name() string {
	return "bitmix"
}

// Compress encodes the data bit by bit through the mixing predictor
func (this *BitMix) Compress(data []byte) (*Result, error) {
	start := time.Now()
	model, err := entropy.NewBitMixModel()

	if err != nil {
		return nil, errors.Wrap(err, "bitmix: compress")
	}

	enc, err := entropy.NewBinaryEncoder(model)

	if err != nil {
		return nil, errors.Wrap(err, "bitmix: compress")
	}

	for _, b := range data {
		enc.EncodeByte(b)
	}

	enc.Dispose()
	out := append(sizeHeader(len(data)), enc.Bytes()...)
	return newResult(this.Name(), len(data), out, start), nil
}

// Decompress reverses Compress
func (this *BitMix) Decompress(data []byte) ([]byte, error) {
	size, payload, err := readSizeHeader(data)

	if err != nil {
		return nil, errors.Wrap(err, "bitmix: decompress")
	}

	model, err := entropy.NewBitMixModel()

	if err != nil {
		return nil, errors.Wrap(err, "bitmix: decompress")
	}

	dec, err := entropy.NewBinaryDecoder(payload, model)

	if err != nil {
		return nil, errors.Wrap(err, "bitmix: decompress")
	}

	out := make([]byte, size)

	for i := range out {
		out[i] = dec.DecodeByte()
	}

	return out, nil
}
