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
	"math"

	hutter "github.com/holbizmetrics/HutterPrize"
)

const (
	// _MIX_FREQ_TOTAL leaves headroom below 1<<16 for the range coder
	_MIX_FREQ_TOTAL    = 65280
	_MIX_LOG_FLOOR     = -20.0
	_MIX_LEARN_RATE    = 0.005
	_MIX_MIN_MAX_SCORE = 1e-10
)

var _MIX_PROB_FLOOR = math.Exp(_MIX_LOG_FLOOR)

// ByteMixer combines the distributions of several byte predictors with a
// geometric (log domain) weighted mean and quantises the result to an
// integer frequency table consumed by the range coder. Uniform inputs are
// invisible under geometric mixing, so specialist predictors stay silent
// instead of diluting the others.
type ByteMixer struct {
	predictors []hutter.BytePredictor
	weights    []float64
	preds      [][]float64
	logMix     [256]float64
	mix        [256]float64
	freqs      [256]int
	cum        [257]int
}

// NewByteMixer creates a new instance of ByteMixer over the given
// predictors with uniform initial weights.
func NewByteMixer(predictors []hutter.BytePredictor) (*ByteMixer, error) {
	if len(predictors) == 0 {
		return nil, errors.New("Byte mixer: at least one predictor required")
	}

	weights := make([]float64, len(predictors))

	for k := range weights {
		weights[k] = 1.0 / float64(len(predictors))
	}

	return NewByteMixerWithWeights(predictors, weights)
}

// NewByteMixerWithWeights creates a new instance of ByteMixer with the
// given initial weights, normalised to sum to 1.
func NewByteMixerWithWeights(predictors []hutter.BytePredictor, weights []float64) (*ByteMixer, error) {
	if len(predictors) == 0 {
		return nil, errors.New("Byte mixer: at least one predictor required")
	}

	if len(weights) != len(predictors) {
		return nil, errors.New("Byte mixer: one weight per predictor required")
	}

	wsum := 0.0

	for _, w := range weights {
		if w <= 0 {
			return nil, errors.New("Byte mixer: weights must be positive")
		}

		wsum += w
	}

	this := &ByteMixer{}
	this.predictors = predictors
	this.weights = make([]float64, len(predictors))
	this.preds = make([][]float64, len(predictors))

	for k := range predictors {
		this.weights[k] = weights[k] / wsum
		this.preds[k] = make([]float64, 256)
	}

	return this, nil
}

// Predict queries every predictor and rebuilds the quantised frequency
// table for the next symbol. Must be called once per symbol before
// GetEncodeInfo or GetSymbol.
func (this *ByteMixer) Predict() {
	for k, p := range this.predictors {
		p.Predict(this.preds[k])
	}

	for s := 0; s < 256; s++ {
		acc := 0.0

		for k := range this.preds {
			p := this.preds[k][s]
			lp := _MIX_LOG_FLOOR

			if p > _MIX_PROB_FLOOR {
				lp = math.Log(p)
			}

			acc += this.weights[k] * lp
		}

		this.logMix[s] = acc
	}

	// Subtract the max before exp for numerical stability. The decoder
	// executes the identical sequence, so quantisation cannot diverge.
	maxLog := this.logMix[0]

	for s := 1; s < 256; s++ {
		if this.logMix[s] > maxLog {
			maxLog = this.logMix[s]
		}
	}

	sum := 0.0

	for s := 0; s < 256; s++ {
		this.mix[s] = math.Exp(this.logMix[s] - maxLog)
		sum += this.mix[s]
	}

	for s := 0; s < 256; s++ {
		this.mix[s] /= sum
	}

	this.quantise()
}

// quantise converts the mixed distribution to integer frequencies summing
// to exactly _MIX_FREQ_TOTAL. The rounding residual lands on the mode,
// clamped so no frequency drops below 1.
func (this *ByteMixer) quantise() {
	sum := 0
	mode := 0

	for s := 0; s < 256; s++ {
		f := int(this.mix[s]*_MIX_FREQ_TOTAL + 0.5)

		if f < 1 {
			f = 1
		}

		this.freqs[s] = f
		sum += f

		if this.mix[s] > this.mix[mode] {
			mode = s
		}
	}

	this.freqs[mode] += _MIX_FREQ_TOTAL - sum

	if this.freqs[mode] < 1 {
		this.freqs[mode] = 1
	}

	this.cum[0] = 0

	for s := 0; s < 256; s++ {
		this.cum[s+1] = this.cum[s] + this.freqs[s]
	}
}

// GetEncodeInfo returns the (cumFreq, freq, total) triple for the symbol
func (this *ByteMixer) GetEncodeInfo(symbol byte) (int, int, int) {
	return this.cum[symbol], this.freqs[symbol], _MIX_FREQ_TOTAL
}

// Total returns the constant frequency total of the quantised table
func (this *ByteMixer) Total() int {
	return _MIX_FREQ_TOTAL
}

// GetSymbol maps a cumulative frequency value returned by the range
// decoder to a symbol: the largest s with cum[s] <= cumValue.
func (this *ByteMixer) GetSymbol(cumValue int) (byte, int, int) {
	lo, hi := 0, 255

	for lo < hi {
		mid := (lo + hi + 1) >> 1

		if this.cum[mid] <= cumValue {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return byte(lo), this.cum[lo], this.freqs[lo]
}

// Update scores every predictor by the probability it assigned to the
// observed symbol, smooths the weights toward the normalised scores and
// propagates the symbol to all predictors.
func (this *ByteMixer) Update(symbol byte) {
	maxScore := 0.0

	for k := range this.preds {
		if this.preds[k][symbol] > maxScore {
			maxScore = this.preds[k][symbol]
		}
	}

	if maxScore >= _MIX_MIN_MAX_SCORE {
		wsum := 0.0

		for k := range this.weights {
			score := this.preds[k][symbol] / maxScore
			this.weights[k] = (1-_MIX_LEARN_RATE)*this.weights[k] + _MIX_LEARN_RATE*score
			wsum += this.weights[k]
		}

		for k := range this.weights {
			this.weights[k] /= wsum
		}
	}

	for _, p := range this.predictors {
		p.Update(symbol)
	}
}

// PPMPredictor adapts a PPMModel to the BytePredictor capability set so it
// can feed a ByteMixer. Update drives the model exactly once per byte,
// after coding.
type PPMPredictor struct {
	model *PPMModel
}

// NewPPMPredictor creates a new instance of PPMPredictor over the model
func NewPPMPredictor(model *PPMModel) (*PPMPredictor, error) {
	if model == nil {
		return nil, errors.New("PPM predictor: Invalid null model parameter")
	}

	return &PPMPredictor{model: model}, nil
}

// Predict forwards to the model's distribution extraction
func (this *PPMPredictor) Predict(probs []float64) {
	this.model.PredictDistribution(probs)
}

// Update forwards the observed symbol to the model
func (this *PPMPredictor) Update(b byte) {
	this.model.UpdateModel(b)
}
