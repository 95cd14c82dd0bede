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
	internal "github.com/holbizmetrics/HutterPrize/internal"
)

const (
	_SOFT_TABLE_BITS = 16
	_SOFT_MIN_COUNT  = 3
	_SOFT_MAX_BOOST  = 0.4
	_SOFT_BOOST_STEP = 0.015
)

// softCell is a (predicted byte, confidence count) pair shared by the
// word and sparse models.
type softCell struct {
	pred  byte
	count uint8
}

// softPredict adds a gently boosted distribution for the cell to probs,
// scaled by weight. Below the count gate the contribution is uniform, so
// it stays invisible to geometric mixing.
func softPredict(probs []float64, cell softCell, weight float64) {
	if cell.count >= _SOFT_MIN_COUNT {
		boost := float64(cell.count) * _SOFT_BOOST_STEP

		if boost > _SOFT_MAX_BOOST {
			boost = _SOFT_MAX_BOOST
		}

		rest := weight * (1 - boost) / 256
		peak := weight * (1 + boost*255) / 256

		for s := range probs {
			probs[s] += rest
		}

		probs[cell.pred] += peak - rest
		return
	}

	u := weight / 256

	for s := range probs {
		probs[s] += u
	}
}

// softUpdate applies the shared learning rule: reinforce on a hit,
// overwrite a weak cell on a miss, decay a strong one.
func softUpdate(cell *softCell, b byte) {
	if cell.count > 0 && cell.pred == b {
		if cell.count < 255 {
			cell.count++
		}
	} else if cell.count <= 1 {
		cell.pred = b
		cell.count = 1
	} else {
		cell.count >>= 1
	}
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// WordModel is a soft byte predictor keyed on the current partial word
// and on the (previous word, current word) pair. It only ever boosts a
// byte slightly above uniform so that geometric mixing cannot be
// destructively suppressed by a wrong word guess.
type WordModel struct {
	wordTable []softCell
	pairTable []softCell
	mask      uint64
	wordHash  uint64
	prevWord  uint64
	inWord    bool
}

// NewWordModel creates a new instance of WordModel
func NewWordModel() (*WordModel, error) {
	this := &WordModel{}
	this.wordTable = make([]softCell, 1<<_SOFT_TABLE_BITS)
	this.pairTable = make([]softCell, 1<<_SOFT_TABLE_BITS)
	this.mask = (1 << _SOFT_TABLE_BITS) - 1
	this.wordHash = internal.FNV1A_OFFSET
	return this, nil
}

func (this *WordModel) pairHash() uint64 {
	h := internal.HashByte(this.prevWord, 0)
	return h ^ this.wordHash
}

// Predict blends the two word contexts with equal weight
func (this *WordModel) Predict(probs []float64) {
	for s := range probs {
		probs[s] = 0
	}

	softPredict(probs, this.wordTable[this.wordHash&this.mask], 0.5)
	softPredict(probs, this.pairTable[this.pairHash()&this.mask], 0.5)
}

// ContextHash exposes the rolling hash of the current partial word for
// use as a bit predictor context.
func (this *WordModel) ContextHash() uint64 {
	return this.wordHash
}

// Update trains both contexts on the observed byte, then rolls the word
// hashes: word characters extend the current word, anything else closes
// it and becomes the word separator.
func (this *WordModel) Update(b byte) {
	softUpdate(&this.wordTable[this.wordHash&this.mask], b)
	softUpdate(&this.pairTable[this.pairHash()&this.mask], b)

	if isWordChar(b) {
		this.wordHash = internal.HashByte(this.wordHash, b)
		this.inWord = true
	} else {
		if this.inWord {
			this.prevWord = this.wordHash
		}

		this.wordHash = internal.FNV1A_OFFSET
		this.inWord = false
	}
}
