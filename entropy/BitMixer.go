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

package entropy

import (
	"errors"

	internal "github.com/holbizmetrics/HutterPrize/internal"
)

const _BITMIX_LEARN_RATE = 0.003

// BitMixer combines several bit predictions in the logistic domain: each
// input is stretched to log odds, summed with learned weights and squashed
// back to a 16 bit probability. Weights are adapted by gradient descent on
// coding cost and may take any sign; there is no renormalisation.
type BitMixer struct {
	weights   []float64
	stretched []float64
	logit     float64
}

// NewBitMixer creates a new instance of BitMixer over n inputs with
// uniform initial weights.
func NewBitMixer(n int) (*BitMixer, error) {
	if n < 1 {
		return nil, errors.New("Bit mixer: at least one input required")
	}

	this := &BitMixer{}
	this.weights = make([]float64, n)
	this.stretched = make([]float64, n)

	for i := range this.weights {
		this.weights[i] = 1.0 / float64(n)
	}

	return this, nil
}

// Mix returns the mixed probability (16 bit scale, in [1..65534]) for the
// given input predictions, each in [1..65534].
func (this *BitMixer) Mix(preds []int) int {
	acc := 0.0

	for i, p := range preds {
		this.stretched[i] = internal.STRETCH[p]
		acc += this.weights[i] * this.stretched[i]
	}

	this.logit = acc
	return internal.Squash(acc)
}

// Update adjusts the weights to reduce the coding cost of the last mixed
// prediction given the observed bit.
func (this *BitMixer) Update(bit byte) {
	p := float64(internal.Squash(this.logit)) / 65535
	err := (float64(bit) - p) * _BITMIX_LEARN_RATE

	for i := range this.weights {
		this.weights[i] += err * this.stretched[i]
	}
}
