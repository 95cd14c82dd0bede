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

	hutter "github.com/holbizmetrics/HutterPrize"
	"github.com/holbizmetrics/HutterPrize/entropy"
)

const (
	_CM_PPM_LOW_ORDER  = 2
	_CM_PPM_HIGH_ORDER = 4
)

// ContextMix is byte level context mixing: PPM at two orders, a longest
// match predictor, a word predictor and a sparse predictor, combined by
// the geometric byte mixer and coded with the range coder. Container:
// little-endian int64 original size, then the range coded payload.
type ContextMix struct {
}

// NewContextMix creates a new instance of ContextMix
func NewContextMix() (*ContextMix, error) {
	return &ContextMix{}, nil
}

// Name returns the registry name of the method
func (this *ContextMix) Name() string {
	return "cm"
}

// newMixer builds the predictor stack. Compress and Decompress construct
// it identically so both sides evolve in lock-step.
func (this *ContextMix) newMixer() (*entropy.ByteMixer, error) {
	ppmLow, err := entropy.NewPPMModel(_CM_PPM_LOW_ORDER)

	if err != nil {
		return nil, err
	}

	ppmHigh, err := entropy.NewPPMModel(_CM_PPM_HIGH_ORDER)

	if err != nil {
		return nil, err
	}

	predLow, err := entropy.NewPPMPredictor(ppmLow)

	if err != nil {
		return nil, err
	}

	predHigh, err := entropy.NewPPMPredictor(ppmHigh)

	if err != nil {
		return nil, err
	}

	match, err := entropy.NewMatchModel()

	if err != nil {
		return nil, err
	}

	word, err := entropy.NewWordModel()

	if err != nil {
		return nil, err
	}

	sparse, err := entropy.NewSparseModel()

	if err != nil {
		return nil, err
	}

	return entropy.NewByteMixer([]hutter.BytePredictor{predLow, predHigh, match, word, sparse})
}

// Compress encodes the data through the mixed model
func (this *ContextMix) Compress(data []byte) (*Result, error) {
	start := time.Now()
	mixer, err := this.newMixer()

	if err != nil {
		return nil, errors.Wrap(err, "cm: compress")
	}

	enc, err := entropy.NewRangeEncoder()

	if err != nil {
		return nil, errors.Wrap(err, "cm: compress")
	}

	for _, b := range data {
		mixer.Predict()
		cum, freq, total := mixer.GetEncodeInfo(b)
		enc.Encode(cum, freq, total)
		mixer.Update(b)
	}

	enc.Dispose()
	out := append(sizeHeader(len(data)), enc.Bytes()...)
	return newResult(this.Name(), len(data), out, start), nil
}

// Decompress reverses Compress
func (this *ContextMix) Decompress(data []byte) ([]byte, error) {
	size, payload, err := readSizeHeader(data)

	if err != nil {
		return nil, errors.Wrap(err, "cm: decompress")
	}

	mixer, err := this.newMixer()

	if err != nil {
		return nil, errors.Wrap(err, "cm: decompress")
	}

	dec, err := entropy.NewRangeDecoder(payload)

	if err != nil {
		return nil, errors.Wrap(err, "cm: decompress")
	}

	out := make([]byte, size)

	for i := range out {
		mixer.Predict()
		v := dec.GetFreq(mixer.Total())
		sym, cum, freq := mixer.GetSymbol(v)
		dec.Update(cum, freq)
		mixer.Update(sym)
		out[i] = sym
	}

	return out, nil
}
