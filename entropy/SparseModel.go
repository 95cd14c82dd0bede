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

// _SPARSE_PATTERNS are the non-adjacent history offsets of each context.
// Offset -k denotes the k-th most recent byte.
var _SPARSE_PATTERNS = [3][3]int{
	{-1, -3, -5},
	{-1, -2, -4},
	{-2, -4, -8},
}

const _SPARSE_HISTORY = 8

// SparseModel is a soft byte predictor over three skip-gram contexts of
// non adjacent history bytes, blended with equal weight. Like WordModel
// it only nudges probabilities slightly above uniform.
type SparseModel struct {
	tables  [3][]softCell
	mask    uint64
	history [_SPARSE_HISTORY]byte
	pos     int
	seen    int
}

// NewSparseModel creates a new instance of SparseModel
func NewSparseModel() (*SparseModel, error) {
	this := &SparseModel{}

	for i := range this.tables {
		this.tables[i] = make([]softCell, 1<<_SOFT_TABLE_BITS)
	}

	this.mask = (1 << _SOFT_TABLE_BITS) - 1
	return this, nil
}

// at returns the history byte at the given negative offset
func (this *SparseModel) at(offset int) byte {
	return this.history[(this.pos+offset+2*_SPARSE_HISTORY)%_SPARSE_HISTORY]
}

func (this *SparseModel) patternHash(p int) uint64 {
	h := internal.HashByte(internal.FNV1A_OFFSET, byte(p))

	for _, off := range _SPARSE_PATTERNS[p] {
		h = internal.HashByte(h, this.at(off))
	}

	return h
}

// Predict blends the three sparse contexts with equal weight. Before
// enough history accumulated the output is uniform.
func (this *SparseModel) Predict(probs []float64) {
	for s := range probs {
		probs[s] = 0
	}

	if this.seen < _SPARSE_HISTORY {
		for s := range probs {
			probs[s] = 1.0 / 256
		}

		return
	}

	for p := range _SPARSE_PATTERNS {
		softPredict(probs, this.tables[p][this.patternHash(p)&this.mask], 1.0/3)
	}
}

// Update trains each pattern context on the observed byte, then pushes it
// onto the history ring.
func (this *SparseModel) Update(b byte) {
	if this.seen >= _SPARSE_HISTORY {
		for p := range _SPARSE_PATTERNS {
			softUpdate(&this.tables[p][this.patternHash(p)&this.mask], b)
		}
	}

	this.history[this.pos] = b
	this.pos = (this.pos + 1) % _SPARSE_HISTORY
	this.seen++
}
