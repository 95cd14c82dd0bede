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

import "fmt"

// bitCell is one (prediction, confidence count) cell of a BitPredictor
type bitCell struct {
	pred  uint16
	count uint8
}

// BitPredictor is a context indexed table of P(bit=1) estimates with a
// count adaptive learning rate: young cells move fast, mature cells
// settle down.
type BitPredictor struct {
	data []bitCell
	mask uint32
	rate [256]uint8
}

// NewBitPredictor creates a new instance of BitPredictor with 2^tableBits
// cells initialised to the neutral probability.
func NewBitPredictor(tableBits uint) (*BitPredictor, error) {
	if tableBits < 1 || tableBits > 30 {
		return nil, fmt.Errorf("Bit predictor: invalid table bits %d (must be in [1..30])", tableBits)
	}

	this := &BitPredictor{}
	this.data = make([]bitCell, 1<<tableBits)
	this.mask = uint32(1<<tableBits) - 1

	for i := range this.data {
		this.data[i].pred = 32768
	}

	for c := range this.rate {
		switch {
		case c < 2:
			this.rate[c] = 128
		case c < 8:
			this.rate[c] = 64
		case c < 32:
			this.rate[c] = 32
		case c < 128:
			this.rate[c] = 16
		default:
			this.rate[c] = 8
		}
	}

	return this, nil
}

// Predict returns the current P(bit=1) for the context, 16 bit scale
func (this *BitPredictor) Predict(ctx uint32) int {
	return int(this.data[ctx&this.mask].pred)
}

// Update moves the context's prediction toward the observed bit
func (this *BitPredictor) Update(ctx uint32, bit byte) {
	cell := &this.data[ctx&this.mask]
	target := 1

	if bit != 0 {
		target = 65534
	}

	p := int(cell.pred) + ((target-int(cell.pred))*int(this.rate[cell.count]))>>8

	if p < 1 {
		p = 1
	} else if p > 65534 {
		p = 65534
	}

	cell.pred = uint16(p)

	if cell.count < 255 {
		cell.count++
	}
}
